package wallet

// SignResult is what a wallet delivers to the success callback of SignData.
type SignResult struct {
	Signature string // hex, including the signer's format tag
	Random    string // hex nonce mixed into the signed payload
	Address   string // account that produced the signature; empty if the wallet does not report it
}

// Connector is the surface of an external wallet: its connection state and an
// asynchronous single-shot signing primitive. Exactly one of onSuccess or
// onFailure is expected per SignData call, possibly on another goroutine.
type Connector interface {
	Session() Session
	SignData(hexMessage string, onSuccess func(SignResult), onFailure func(error))
}
