package httpclient

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMultipartBody_Encode(t *testing.T) {
	body := &MultipartBody{
		Fields: map[string]string{"language": "en"},
		Files: []FileField{
			{
				FieldName:   "audio_data",
				FileName:    "recording.webm",
				ContentType: "audio/webm",
				Data:        []byte{0x1a, 0x45, 0xdf, 0xa3},
			},
		},
	}

	reader, contentType, err := body.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data; boundary=") {
		t.Errorf("unexpected content type: %q", contentType)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse media type: %v", err)
	}
	mr := multipart.NewReader(reader, params["boundary"])

	var sawField, sawFile bool
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		switch part.FormName() {
		case "language":
			data, _ := io.ReadAll(part)
			if string(data) != "en" {
				t.Errorf("expected field value 'en', got %q", data)
			}
			sawField = true
		case "audio_data":
			if part.FileName() != "recording.webm" {
				t.Errorf("expected filename recording.webm, got %q", part.FileName())
			}
			if ct := part.Header.Get("Content-Type"); ct != "audio/webm" {
				t.Errorf("expected part content type audio/webm, got %q", ct)
			}
			data, _ := io.ReadAll(part)
			if !bytes.Equal(data, []byte{0x1a, 0x45, 0xdf, 0xa3}) {
				t.Errorf("file data mismatch: %v", data)
			}
			sawFile = true
		}
	}
	if !sawField || !sawFile {
		t.Errorf("expected both field and file parts, got field=%v file=%v", sawField, sawFile)
	}
}

func TestMultipartBody_EncodeFromReader(t *testing.T) {
	body := &MultipartBody{
		Files: []FileField{
			{
				FieldName: "audio_data",
				FileName:  "recording.wav",
				Reader:    strings.NewReader("RIFF....WAVE"),
			},
		},
	}

	reader, contentType, err := body.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := io.ReadAll(reader)
	if !bytes.Contains(data, []byte("RIFF....WAVE")) {
		t.Error("expected streamed file content in encoded body")
	}
	if contentType == "" {
		t.Error("expected non-empty content type")
	}
}

func TestClient_Do_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("audio_data")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "recording.webm" {
			t.Errorf("expected recording.webm, got %q", header.Filename)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/upload-audio",
		Body: &MultipartBody{
			Files: []FileField{
				{FieldName: "audio_data", FileName: "recording.webm", Data: []byte("webm-bytes")},
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := escapeQuotes(`file"name.webm`); got != `file\"name.webm` {
		t.Errorf("unexpected escape result: %q", got)
	}
}
