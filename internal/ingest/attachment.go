package ingest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/abhisek/studybuddy/internal/llm"
)

// Kind classifies an attachment.
type Kind int

const (
	KindImage Kind = iota
	KindText
	KindURL
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindURL:
		return "url"
	default:
		return "other"
	}
}

// Attachment is extra material sent alongside the prompt.
type Attachment struct {
	Kind Kind
	Name string

	// Content is the text body for KindText and the address for KindURL.
	Content string

	// Data and MIMEType hold image bytes for KindImage. MIMEType also
	// names the detected type for KindOther.
	Data     []byte
	MIMEType string

	// PageText is the visible text of a fetched URL. Empty means the URL
	// has not been fetched.
	PageText string
}

// ImageFromDataURI builds an image attachment from a data: URI.
func ImageFromDataURI(name, uri string) (Attachment, error) {
	data, mimeType, err := ParseDataURI(uri)
	if err != nil {
		return Attachment{}, err
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Attachment{}, fmt.Errorf("%s: not an image (%s)", name, mimeType)
	}
	return Attachment{Kind: KindImage, Name: name, Data: data, MIMEType: mimeType}, nil
}

// ParseDataURI decodes a base64 data: URI. The declared media type is
// replaced by the sniffed one when they disagree.
func ParseDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("malformed data URI")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", errors.New("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI: %w", err)
	}

	declared := strings.TrimSuffix(meta, ";base64")
	sniffed := mimetype.Detect(data)
	if declared == "" || !sniffed.Is(declared) && sniffed.String() != "application/octet-stream" {
		declared = sniffed.String()
	}
	return data, declared, nil
}

// URLAttachment builds an unfetched URL attachment.
func URLAttachment(raw string) (Attachment, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Attachment{}, fmt.Errorf("invalid URL %q", raw)
	}
	return Attachment{Kind: KindURL, Name: u.String(), Content: u.String()}, nil
}

// FromFile reads a local file and classifies it by its sniffed type.
func FromFile(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("read attachment: %w", err)
	}
	return classify(filepath.Base(path), data), nil
}

// Open classifies arg as a URL when it has an http(s) scheme and as a
// file path otherwise.
func Open(arg string) (Attachment, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return URLAttachment(arg)
	}
	return FromFile(arg)
}

func classify(name string, data []byte) Attachment {
	mt := mimetype.Detect(data)
	switch {
	case strings.HasPrefix(mt.String(), "image/"):
		return Attachment{Kind: KindImage, Name: name, Data: data, MIMEType: mt.String()}
	case isText(mt):
		return Attachment{Kind: KindText, Name: name, Content: string(data), MIMEType: mt.String()}
	default:
		return Attachment{Kind: KindOther, Name: name, MIMEType: mt.String()}
	}
}

func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Parts renders the attachment as prompt parts.
func (a Attachment) Parts() []llm.Part {
	switch a.Kind {
	case KindImage:
		return []llm.Part{
			llm.InlinePart(a.Data, a.MIMEType),
			llm.TextPart(fmt.Sprintf("\nThe above image is called: %s\n", a.Name)),
		}
	case KindText:
		return []llm.Part{llm.TextPart(fmt.Sprintf("\nContent from %s:\n%s\n", a.Name, a.Content))}
	case KindURL:
		if a.PageText == "" {
			return []llm.Part{llm.TextPart(fmt.Sprintf("\nPlease use information from this URL: %s\n", a.Content))}
		}
		return []llm.Part{
			llm.TextPart(fmt.Sprintf("\n--- Content from URL: %s ---\n", a.Content)),
			llm.TextPart(a.PageText),
			llm.TextPart(fmt.Sprintf("\n--- End of content from URL: %s ---\n", a.Content)),
		}
	default:
		kind := a.MIMEType
		if kind == "" {
			kind = a.Kind.String()
		}
		return []llm.Part{llm.TextPart(fmt.Sprintf("\nContent referenced from %s (%s)\n", a.Name, kind))}
	}
}
