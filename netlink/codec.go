package netlink

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Encode serializes a Packet to its wire form. WebSocket's own frame
// header supplies the length prefix; this is the payload that goes inside
// one binary frame.
func Encode(p Packet) ([]byte, error) { return json.Marshal(p) }

// Decode parses one binary WebSocket frame's payload back into a Packet.
func Decode(b []byte) (Packet, error) {
	var p Packet
	err := json.Unmarshal(b, &p)
	return p, err
}
