package models

import "strings"

// PartKind discriminates the content part variants of a multimodal message.
type PartKind string

const (
	PartText     PartKind = "text"
	PartImage    PartKind = "image"
	PartDocument PartKind = "document"
)

// ContentPart is one element of a multimodal message body: plain text, an
// image reference, or a document reference.
type ContentPart struct {
	Kind PartKind `json:"kind"`

	// Text is set for PartText.
	Text string `json:"text,omitempty"`

	// URI is set for PartImage and PartDocument. Images may use data URIs.
	URI string `json:"uri,omitempty"`

	// Name is an optional display name for PartDocument.
	Name string `json:"name,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: PartText, Text: text}
}

// ImagePart builds an image content part.
func ImagePart(uri string) ContentPart {
	return ContentPart{Kind: PartImage, URI: uri}
}

// DocumentPart builds a document reference part.
func DocumentPart(uri, name string) ContentPart {
	return ContentPart{Kind: PartDocument, URI: uri, Name: name}
}

// ToModelText projects content parts to plain text for models without vision.
// Non-text parts are replaced with the placeholder (e.g. "[image]").
func ToModelText(parts []ContentPart, placeholder string) string {
	var sb strings.Builder
	for i, part := range parts {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch part.Kind {
		case PartText:
			sb.WriteString(part.Text)
		case PartDocument:
			if part.Name != "" {
				sb.WriteString(part.Name + " (" + part.URI + ")")
			} else {
				sb.WriteString(part.URI)
			}
		default:
			sb.WriteString(placeholder)
		}
	}
	return sb.String()
}
