package types

// SignatureFormat names the encoding of the signature field in a submitted vote.
type SignatureFormat string

// SignatureBase16 is the only format the backend accepts.
const SignatureBase16 SignatureFormat = "Base16"
