package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToModelText(t *testing.T) {
	tests := []struct {
		name  string
		parts []ContentPart
		want  string
	}{
		{
			name:  "text only",
			parts: []ContentPart{TextPart("hello")},
			want:  "hello",
		},
		{
			name: "image replaced with placeholder",
			parts: []ContentPart{
				TextPart("see screenshot:"),
				ImagePart("data:image/png;base64,AAAA"),
			},
			want: "see screenshot:\n[image]",
		},
		{
			name: "document keeps name and uri",
			parts: []ContentPart{
				DocumentPart("s3://bucket/report.pdf", "Quarterly report"),
			},
			want: "Quarterly report (s3://bucket/report.pdf)",
		},
		{
			name: "unnamed document keeps uri",
			parts: []ContentPart{
				DocumentPart("s3://bucket/report.pdf", ""),
			},
			want: "s3://bucket/report.pdf",
		},
		{
			name:  "empty",
			parts: nil,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToModelText(tt.parts, "[image]"))
		})
	}
}

func TestMultimodalMessageProjection(t *testing.T) {
	m := MultimodalMessage("web_surfer", []ContentPart{
		TextPart("the page shows"),
		ImagePart("data:image/png;base64,AAAA"),
	})
	assert.Equal(t, MessageMultimodal, m.Kind)
	assert.Equal(t, "the page shows\n[image]", m.Content)
	assert.Len(t, m.Parts, 2)
}

func TestIsUser(t *testing.T) {
	assert.True(t, TextMessage("user", "hi").IsUser())
	assert.True(t, TextMessage("user_proxy", "hi").IsUser())
	assert.False(t, TextMessage("orchestrator", "hi").IsUser())
}
