package compose

import "net"

// The encoder binds a destination port pair derived from each relay's
// allocated port by a fixed offset, so no handshake is needed to agree
// on where media lands.
const portOffset = 1000

func companionPorts(relayPort int) (rtp, rtcp int) {
	return relayPort + portOffset, relayPort + portOffset + 1
}

func probeUDPPort(port int) bool {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP:   net.IPv4(127, 0, 0, 1),
		Port: port,
	})
	if err != nil {
		return false
	}
	defer conn.Close()
	return true
}

// probeCompanionPorts reports whether both destination ports are free to
// bind. The encoder still owns binding them; this only surfaces clashes
// early.
func probeCompanionPorts(relayPort int) bool {
	rtp, rtcp := companionPorts(relayPort)
	return probeUDPPort(rtp) && probeUDPPort(rtcp)
}
