package types

// Identity is the locally persisted keypair of an account.
type Identity struct {
	Account AccountID `json:"account"`
	KeyPair KeyPair   `json:"key_pair"`
	Created int64     `json:"created_utc"`
}
