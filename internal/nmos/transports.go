package nmos

// Transport type URNs defined by IS-04/IS-05.
const (
	TransportRTP          = "urn:x-nmos:transport:rtp"
	TransportRTPMulticast = "urn:x-nmos:transport:rtp.mcast"
	TransportRTPUnicast   = "urn:x-nmos:transport:rtp.ucast"
	TransportDASH         = "urn:x-nmos:transport:dash"
	TransportWebSocket    = "urn:x-nmos:transport:websocket"
	TransportMQTT         = "urn:x-nmos:transport:mqtt"
)

// ValidTransports returns the transport URNs a Connection API of the given
// version is expected to manage. WebSocket and MQTT were introduced in
// IS-05 v1.1; resources using other transports are out of scope for
// cross-API comparison.
func ValidTransports(connectionVersion APIVersion) []string {
	transports := []string{
		TransportRTP,
		TransportRTPMulticast,
		TransportRTPUnicast,
		TransportDASH,
	}
	if connectionVersion.AtLeast(1, 1) {
		transports = append(transports, TransportWebSocket, TransportMQTT)
	}
	return transports
}
