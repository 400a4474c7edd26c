package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewAnswerID generates a unique answer ID with the "ans_" prefix
// Format: ans_<uuid>
func NewAnswerID() string {
	return "ans_" + uuid.New().String()
}
