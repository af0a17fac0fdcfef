package api

import "wallet_vote/internal/types"

// Category is a poll category. Identity is Slug.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Candidate is a votable entry. The backend does not partition candidates by
// category, so every candidate is eligible in every category.
type Candidate struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImgURL      *string `json:"img_url,omitempty"`
	Extra       any     `json:"extra,omitempty"`
}

// Link returns Extra when it is a string reference, such as an external URL.
func (c Candidate) Link() string {
	s, _ := c.Extra.(string)
	return s
}

// VoteRecord is a signed vote as submitted to and reported by the backend.
// Msg is the hex encoding of the plaintext vote statement.
type VoteRecord struct {
	Addr          string                `json:"addr"`
	CandidateSlug string                `json:"candidate_slug"`
	CategorySlug  string                `json:"category_slug"`
	Msg           string                `json:"msg"`
	Random        string                `json:"random,omitempty"`
	Signature     string                `json:"signature"`
	SigFormat     types.SignatureFormat `json:"sig_format,omitempty"`
	Extra         any                   `json:"extra,omitempty"`
}

// VoteCheckResult is the body of GET /vote/check.
type VoteCheckResult struct {
	Votes []VoteRecord `json:"votes"`
}
