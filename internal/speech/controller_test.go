package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nadzzz/speakgenie/internal/voice"
)

var errTest = errors.New("synthesis failed")

// fakePlatform records utterances and lets the test deliver events.
type fakePlatform struct {
	mu         sync.Mutex
	utterances []Utterance
	cancels    int
	pauses     int
	resumes    int
	refuse     func(Utterance) error
}

func (p *fakePlatform) Speak(u Utterance) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refuse != nil {
		if err := p.refuse(u); err != nil {
			return err
		}
	}
	p.utterances = append(p.utterances, u)
	return nil
}

func (p *fakePlatform) Cancel() { p.mu.Lock(); p.cancels++; p.mu.Unlock() }
func (p *fakePlatform) Pause()  { p.mu.Lock(); p.pauses++; p.mu.Unlock() }
func (p *fakePlatform) Resume() { p.mu.Lock(); p.resumes++; p.mu.Unlock() }

func (p *fakePlatform) last(t *testing.T) Utterance {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.utterances) == 0 {
		t.Fatal("no utterance issued")
	}
	return p.utterances[len(p.utterances)-1]
}

func (p *fakePlatform) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.utterances)
}

var (
	enUS = voice.Voice{ID: "en_US-lessac-medium", Name: "Lessac", Locale: "en-US"}
	hiIN = voice.Voice{ID: "hi_IN-pratham-medium", Name: "Pratham", Locale: "hi-IN"}
	taIN = voice.Voice{ID: "ta_IN-valluvar-medium", Name: "Valluvar", Locale: "ta-IN"}
)

func newCatalog(t *testing.T, voices ...voice.Voice) *voice.Catalog {
	t.Helper()
	c := voice.NewCatalog(voice.SourceFunc(func(context.Context) ([]voice.Voice, error) {
		return voices, nil
	}), voice.DefaultPolicy())
	c.Refresh(context.Background())
	return c
}

type failureLog struct {
	mu   sync.Mutex
	errs []error
}

func (f *failureLog) hook(_ *Request, err error) {
	f.mu.Lock()
	f.errs = append(f.errs, err)
	f.mu.Unlock()
}

func (f *failureLog) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errs)
}

func newController(t *testing.T, voices ...voice.Voice) (*Controller, *fakePlatform, *failureLog) {
	t.Helper()
	p := &fakePlatform{}
	f := &failureLog{}
	c := NewController(p, newCatalog(t, voices...), WithFailureHook(f.hook))
	return c, p, f
}

func settled(t *testing.T, r *Request) Result {
	t.Helper()
	select {
	case <-r.Done():
		return r.Result()
	case <-time.After(time.Second):
		t.Fatal("request did not settle")
		return Result{}
	}
}

func TestSpeak_BlankTextIsNoop(t *testing.T) {
	c, p, _ := newController(t, enUS)
	for _, text := range []string{"", "   ", "\n\t"} {
		if req := c.Speak(text, "en-US", DefaultParams()); req != nil {
			t.Errorf("Speak(%q) returned a request", text)
		}
	}
	if p.count() != 0 {
		t.Errorf("platform received %d utterances, want 0", p.count())
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

func TestSpeak_HappyPath(t *testing.T) {
	c, p, f := newController(t, enUS, hiIN)

	req := c.Speak("Namaste", "hi-IN", DefaultParams())
	u := p.last(t)
	if u.Voice == nil || u.Voice.ID != hiIN.ID || u.Locale != "hi-IN" {
		t.Fatalf("utterance voice/locale = %v/%q, want hi-IN voice", u.Voice, u.Locale)
	}
	if c.State() != StateSpeaking {
		t.Fatalf("state after speak = %v, want speaking", c.State())
	}

	u.Notify(Event{Kind: EventStart})
	if !c.IsSpeaking() {
		t.Error("IsSpeaking = false after start")
	}
	u.Notify(Event{Kind: EventEnd})

	res := settled(t, req)
	if res.Err != nil || res.Tier != TierPrimary || res.Attempts != 1 {
		t.Errorf("result = %+v, want primary success in one attempt", res)
	}
	if c.State() != StateIdle || f.count() != 0 {
		t.Errorf("state = %v failures = %d, want idle and none", c.State(), f.count())
	}
}

func TestSpeak_ClampsParams(t *testing.T) {
	c, p, _ := newController(t, enUS)
	c.Speak("Hello", "en-US", Params{Rate: -5, Pitch: 99, Volume: 3})

	got := p.last(t).Params
	want := Params{Rate: 0.1, Pitch: 2, Volume: 1}
	if got != want {
		t.Errorf("params = %+v, want %+v", got, want)
	}
}

func TestSpeak_MarathiUsesHindiSubstitute(t *testing.T) {
	c, p, f := newController(t, enUS, hiIN)

	req := c.Speak("Hello", "mr-IN", Params{Rate: 1.0, Pitch: 1.1, Volume: 1.0})
	u := p.last(t)
	if u.Voice == nil || u.Voice.Locale != "hi-IN" {
		t.Fatalf("first utterance voice = %v, want hi-IN", u.Voice)
	}
	if u.Locale != "hi-IN" {
		t.Fatalf("first utterance locale = %q, want hi-IN", u.Locale)
	}

	u.Notify(Event{Kind: EventStart})
	u.Notify(Event{Kind: EventEnd})

	res := settled(t, req)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Locale != "hi-IN" || res.Tier != TierSubstitute {
		t.Errorf("result locale/tier = %q/%q, want hi-IN/substitute", res.Locale, res.Tier)
	}
	if c.State() != StateIdle || f.count() != 0 {
		t.Errorf("state = %v failures = %d, want idle and none", c.State(), f.count())
	}
}

func TestSpeak_FallsBackOnError(t *testing.T) {
	c, p, f := newController(t, enUS, hiIN)

	req := c.Speak("Hello", "mr-IN", DefaultParams())
	p.last(t).Notify(Event{Kind: EventError, Err: errTest})

	if c.State() != StateSpeaking {
		t.Fatalf("state between attempts = %v, want speaking", c.State())
	}
	second := p.last(t)
	if second.Voice == nil || second.Voice.ID != enUS.ID || second.Locale != "en-US" {
		t.Fatalf("second utterance = %v/%q, want en-US last resort", second.Voice, second.Locale)
	}
	second.Notify(Event{Kind: EventEnd})

	res := settled(t, req)
	if res.Err != nil || res.Tier != TierLastResort || res.Attempts != 2 {
		t.Errorf("result = %+v, want last resort success after 2 attempts", res)
	}
	if f.count() != 0 {
		t.Errorf("failures = %d, want 0", f.count())
	}
}

func TestSpeak_ExhaustionNotifiesOnce(t *testing.T) {
	c, p, f := newController(t, enUS, taIN, hiIN)

	req := c.Speak("Hello", "gu-IN", DefaultParams())
	for i := 0; i < 10 && c.State() != StateIdle; i++ {
		p.last(t).Notify(Event{Kind: EventError, Err: errTest})
	}

	res := settled(t, req)
	if !errors.Is(res.Err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", res.Err)
	}
	if p.count() != res.Attempts {
		t.Errorf("attempts = %d, platform saw %d", res.Attempts, p.count())
	}
	if res.Attempts > 3 {
		t.Errorf("attempts = %d, chain must hold at most 3 candidates", res.Attempts)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
	if f.count() != 1 {
		t.Errorf("failure notifications = %d, want 1", f.count())
	}

	// A late error for the last utterance changes nothing.
	p.last(t).Notify(Event{Kind: EventError, Err: errTest})
	if f.count() != 1 {
		t.Errorf("failure notifications after late event = %d, want 1", f.count())
	}

	// The controller stays usable.
	next := c.Speak("Again", "en-US", DefaultParams())
	p.last(t).Notify(Event{Kind: EventEnd})
	if res := settled(t, next); res.Err != nil {
		t.Errorf("next request err = %v", res.Err)
	}
}

func TestSpeak_SyncRefusalAdvancesChain(t *testing.T) {
	c, p, f := newController(t, enUS, hiIN)
	p.refuse = func(u Utterance) error {
		if u.Locale == "hi-IN" {
			return errTest
		}
		return nil
	}

	req := c.Speak("Hello", "hi-IN", DefaultParams())
	u := p.last(t)
	if u.Locale != "en-US" {
		t.Fatalf("accepted utterance locale = %q, want en-US", u.Locale)
	}
	u.Notify(Event{Kind: EventEnd})
	if res := settled(t, req); res.Err != nil || res.Attempts != 2 {
		t.Errorf("result = %+v, want success after 2 attempts", res)
	}
	if f.count() != 0 {
		t.Errorf("failures = %d, want 0", f.count())
	}
}

func TestSpeak_SyncRefusalOfEverythingExhausts(t *testing.T) {
	c, p, f := newController(t, enUS)
	p.refuse = func(Utterance) error { return errTest }

	req := c.Speak("Hello", "ta-IN", DefaultParams())
	res := settled(t, req)
	if !errors.Is(res.Err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", res.Err)
	}
	if c.State() != StateIdle || f.count() != 1 {
		t.Errorf("state = %v failures = %d, want idle and 1", c.State(), f.count())
	}
}

func TestSpeak_NoVoicesUsesPlatformDefault(t *testing.T) {
	c, p, _ := newController(t)

	req := c.Speak("Hello", "hi-IN", DefaultParams())
	u := p.last(t)
	if u.Voice != nil {
		t.Fatalf("voice = %+v, want nil", u.Voice)
	}
	if u.Locale != "hi-IN" {
		t.Fatalf("locale = %q, want hi-IN", u.Locale)
	}
	u.Notify(Event{Kind: EventEnd})
	if res := settled(t, req); res.Err != nil {
		t.Fatalf("err = %v", res.Err)
	}
}

func TestSpeak_SupersededUtteranceEventsAreIgnored(t *testing.T) {
	c, p, f := newController(t, enUS, hiIN)

	reqA := c.Speak("first", "en-US", DefaultParams())
	a := p.last(t)
	a.Notify(Event{Kind: EventStart})

	reqB := c.Speak("second", "hi-IN", DefaultParams())
	b := p.last(t)

	if res := settled(t, reqA); !errors.Is(res.Err, ErrCancelled) {
		t.Fatalf("A err = %v, want ErrCancelled", res.Err)
	}

	// A's callbacks arrive after B started; none of them may touch B.
	a.Notify(Event{Kind: EventEnd})
	a.Notify(Event{Kind: EventError, Err: errTest})
	a.Notify(Event{Kind: EventPause})

	select {
	case <-reqB.Done():
		t.Fatal("B settled from A's late callbacks")
	default:
	}
	if c.State() != StateSpeaking {
		t.Fatalf("state = %v, want speaking", c.State())
	}
	if p.count() != 2 {
		t.Fatalf("platform saw %d utterances, want 2", p.count())
	}

	b.Notify(Event{Kind: EventEnd})
	if res := settled(t, reqB); res.Err != nil {
		t.Fatalf("B err = %v", res.Err)
	}
	if f.count() != 0 {
		t.Errorf("failures = %d, want 0", f.count())
	}
}

func TestSpeak_OneActiveUtterance(t *testing.T) {
	c, p, _ := newController(t, enUS)

	var reqs []*Request
	for range 5 {
		reqs = append(reqs, c.Speak("hello", "en-US", DefaultParams()))
		c.Stop()
		reqs = append(reqs, c.Speak("again", "en-US", DefaultParams()))
	}

	// Every request but the last has settled as cancelled.
	for i, r := range reqs[:len(reqs)-1] {
		if res := settled(t, r); !errors.Is(res.Err, ErrCancelled) {
			t.Errorf("request %d err = %v, want ErrCancelled", i, res.Err)
		}
	}
	select {
	case <-reqs[len(reqs)-1].Done():
		t.Fatal("latest request settled early")
	default:
	}
	if p.cancels != len(reqs)-1 {
		t.Errorf("platform cancels = %d, want %d", p.cancels, len(reqs)-1)
	}
}

func TestPauseResume(t *testing.T) {
	c, p, _ := newController(t, enUS)

	c.Pause()
	c.Resume()
	if p.pauses != 0 || p.resumes != 0 || c.State() != StateIdle {
		t.Fatal("pause/resume from idle must be no-ops")
	}

	req := c.Speak("Hello", "en-US", DefaultParams())
	u := p.last(t)
	u.Notify(Event{Kind: EventStart})

	c.Resume()
	if p.resumes != 0 {
		t.Error("resume while speaking reached the platform")
	}

	c.Pause()
	if !c.IsPaused() || !c.IsSpeaking() {
		t.Fatalf("status = %+v, want paused", c.Status())
	}
	c.Pause()
	if p.pauses != 1 {
		t.Errorf("platform pauses = %d, want 1", p.pauses)
	}

	c.Resume()
	if c.State() != StateSpeaking || p.resumes != 1 {
		t.Errorf("state = %v resumes = %d, want speaking and 1", c.State(), p.resumes)
	}

	u.Notify(Event{Kind: EventPause})
	if c.State() != StatePaused {
		t.Errorf("state after pause event = %v, want paused", c.State())
	}
	u.Notify(Event{Kind: EventResume})
	if c.State() != StateSpeaking {
		t.Errorf("state after resume event = %v, want speaking", c.State())
	}

	u.Notify(Event{Kind: EventEnd})
	settled(t, req)
}

func TestStop(t *testing.T) {
	c, p, f := newController(t, enUS, hiIN)

	c.Stop()
	if c.State() != StateIdle {
		t.Fatal("stop from idle must stay idle")
	}

	req := c.Speak("Hello", "mr-IN", DefaultParams())
	u := p.last(t)
	c.Pause()
	c.Stop()

	if c.State() != StateIdle {
		t.Fatalf("state = %v, want idle", c.State())
	}
	if res := settled(t, req); !errors.Is(res.Err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", res.Err)
	}

	// Pending fallbacks are gone: a late error does not start a new attempt.
	u.Notify(Event{Kind: EventError, Err: errTest})
	if p.count() != 1 {
		t.Errorf("platform saw %d utterances, want 1", p.count())
	}
	if f.count() != 0 {
		t.Errorf("failures = %d, want 0", f.count())
	}
}

func TestRequestWait(t *testing.T) {
	c, p, _ := newController(t, enUS)
	req := c.Speak("Hello", "en-US", DefaultParams())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := req.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait err = %v, want deadline exceeded", err)
	}

	go p.last(t).Notify(Event{Kind: EventEnd})
	res, err := req.Wait(context.Background())
	if err != nil || res.Locale != "en-US" {
		t.Fatalf("Wait = %+v, %v", res, err)
	}
}
