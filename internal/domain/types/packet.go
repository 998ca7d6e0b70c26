package types

// EncryptedPacket is the wire and storage form of an encrypted payload.
// IV, Data and Checksum are standard base64.
type EncryptedPacket struct {
	Version  int    `json:"version"`
	IV       string `json:"iv"`
	Data     string `json:"data"`
	Checksum string `json:"checksum"`
}

// ChatMessage is one entry of the "messages" array friends share.
type ChatMessage struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
