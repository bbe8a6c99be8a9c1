package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MaxMessageSize bounds a single framed message.
const MaxMessageSize = 16 << 20

// ErrMalformedFrame is returned when the byte stream does not follow the
// framing. The stream cannot be resynchronised after it.
var ErrMalformedFrame = errors.New("malformed frame")

// Message is the envelope carried by every frame.
type Message struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewID returns a fresh message id.
func NewID() string {
	return uuid.NewString()
}

// typed is satisfied by both Request and Response.
type typed interface {
	Type() Type
}

// NewMessage wraps a request or response into an envelope with the given id.
func NewMessage(id string, body typed) (*Message, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", body.Type(), err)
	}
	return &Message{ID: id, Type: body.Type(), Payload: payload}, nil
}

// Request decodes the payload as the request named by the envelope type.
func (m *Message) Request() (Request, error) {
	req, err := NewRequest(m.Type)
	if err != nil {
		return nil, err
	}
	if err := decodePayload(m.Payload, req); err != nil {
		return nil, fmt.Errorf("failed to decode %s request: %w", m.Type, err)
	}
	return req, nil
}

// Response decodes the payload as the response named by the envelope type.
func (m *Message) Response() (Response, error) {
	resp, err := NewResponse(m.Type)
	if err != nil {
		return nil, err
	}
	if err := decodePayload(m.Payload, resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", m.Type, err)
	}
	return resp, nil
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, v)
}

// WriteMessage frames m onto w.
func WriteMessage(w io.Writer, m *Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if len(data) > MaxMessageSize {
		return fmt.Errorf("message of %d bytes exceeds limit of %d", len(data), MaxMessageSize)
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 16)
	buf.WriteString(strconv.Itoa(len(data)))
	buf.WriteString("\r\n")
	buf.Write(data)
	buf.WriteString("\r\n")

	_, err = w.Write(buf.Bytes())
	return err
}

// ReadMessage reads one framed message from r. Transport errors such as
// io.EOF are returned as they are; framing problems wrap ErrMalformedFrame.
func ReadMessage(r *bufio.Reader) (*Message, error) {
	line, err := readLengthLine(r)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(line, "\r\n") {
		return nil, fmt.Errorf("%w: length line not terminated by CRLF", ErrMalformedFrame)
	}

	n, err := strconv.Atoi(strings.TrimSuffix(line, "\r\n"))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: invalid length %q", ErrMalformedFrame, strings.TrimSpace(line))
	}
	if n > MaxMessageSize {
		return nil, fmt.Errorf("%w: length %d exceeds limit of %d", ErrMalformedFrame, n, MaxMessageSize)
	}

	data := make([]byte, n+2)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if data[n] != '\r' || data[n+1] != '\n' {
		return nil, fmt.Errorf("%w: payload not terminated by CRLF", ErrMalformedFrame)
	}

	var m Message
	if err := json.Unmarshal(data[:n], &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return &m, nil
}

// maxLengthLine bounds the length line, CRLF included.
const maxLengthLine = 20

// readLengthLine reads up to and including the first '\n', giving up after
// maxLengthLine bytes.
func readLengthLine(r *bufio.Reader) (string, error) {
	line := make([]byte, 0, maxLengthLine)
	for len(line) < maxLengthLine {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && len(line) > 0 {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		line = append(line, b)
		if b == '\n' {
			return string(line), nil
		}
	}
	return "", fmt.Errorf("%w: length line longer than %d bytes", ErrMalformedFrame, maxLengthLine)
}
