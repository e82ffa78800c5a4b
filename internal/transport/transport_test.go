package transport

import (
	"testing"

	"github.com/nadzzz/speakgenie/internal/speech"
)

func TestSpeechRequestParams(t *testing.T) {
	if p := (SpeechRequest{Text: "hi"}).Params(); p != nil {
		t.Errorf("Params() = %+v, want nil", p)
	}

	rate := 0.7
	p := SpeechRequest{Text: "hi", Rate: &rate}.Params()
	want := speech.DefaultParams()
	want.Rate = 0.7
	if p == nil || *p != want {
		t.Errorf("Params() = %+v, want %+v", p, want)
	}
}
