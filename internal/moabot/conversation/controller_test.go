package conversation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/moadev/moabot/internal/moabot/audit"
	"github.com/moadev/moabot/internal/moabot/dispatch"
	"github.com/moadev/moabot/internal/moabot/intent"
	"github.com/moadev/moabot/internal/moabot/ledger"
	"github.com/moadev/moabot/internal/moabot/session"
	"github.com/moadev/moabot/internal/moabot/tools"
)

type stubResolver struct {
	fn    func(intent.Request) (*intent.Result, error)
	calls int
}

func (s *stubResolver) Resolve(_ context.Context, req intent.Request) (*intent.Result, error) {
	s.calls++
	return s.fn(req)
}

type captureAuditor struct {
	entries []audit.Entry
}

func (c *captureAuditor) RecordTurn(_ context.Context, e audit.Entry) error {
	c.entries = append(c.entries, e)
	return nil
}

type fixture struct {
	controller *Controller
	sessions   *session.Store
	resolver   *stubResolver
	auditor    *captureAuditor
}

func newFixture(t *testing.T, backend http.Handler, resolve func(intent.Request) (*intent.Result, error)) *fixture {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	validator, err := tools.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	sessions := session.NewStore()
	resolver := &stubResolver{fn: resolve}
	auditor := &captureAuditor{}
	d := dispatch.New(ledger.New(ledger.Config{BaseURL: srv.URL}), nil)
	return &fixture{
		controller: New(sessions, resolver, d, validator, auditor, nil),
		sessions:   sessions,
		resolver:   resolver,
		auditor:    auditor,
	}
}

func proposeTool(name string, args map[string]any) func(intent.Request) (*intent.Result, error) {
	return func(intent.Request) (*intent.Result, error) {
		return &intent.Result{Invocation: &intent.Invocation{Name: name, Arguments: args}}, nil
	}
}

func noTool(reply string) func(intent.Request) (*intent.Result, error) {
	return func(intent.Request) (*intent.Result, error) {
		return &intent.Result{Reply: reply}, nil
	}
}

func TestToolTurnResetsNaturalCount(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(3)
	}), proposeTool("create_expense", map[string]any{
		"date": "2026-08-28", "amount": float64(4500), "category": "외식",
	}))

	f.sessions.Mutate("u1", func(s *session.Session) { s.NaturalCount = 3 })

	resp, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Auth: "Bearer t", Message: "어제 외식 4500원 썼어"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(resp.Reply, "등록 완료") {
		t.Errorf("unexpected reply %q", resp.Reply)
	}
	if got := f.sessions.Snapshot("u1").NaturalCount; got != 0 {
		t.Errorf("naturalCount = %d, want 0 after tool turn", got)
	}
}

func TestNaturalEscalationAndBlock(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("ledger must not be called on natural turns")
	}), noTool("재밌는 얘기네요!"))

	want := []string{"재밌는 얘기네요!", msgNudge, msgWarn, msgLastWarn, msgBlockOnset}
	for i, expected := range want {
		resp, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Message: "날씨 어때?"})
		if err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
		if resp.Reply != expected {
			t.Errorf("turn %d reply = %q, want %q", i+1, resp.Reply, expected)
		}
	}

	s := f.sessions.Snapshot("u1")
	if !s.Blocked || !s.BlockNotified {
		t.Fatalf("session not blocked after %d turns: %+v", blockThreshold, s)
	}

	// The turn after the onset gets the fixed refusal, without consulting
	// the resolver.
	before := f.resolver.calls
	resp, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Message: "아직 있어?"})
	if err != nil {
		t.Fatalf("blocked turn: %v", err)
	}
	if resp.Reply != msgBlocked {
		t.Errorf("blocked reply = %q, want %q", resp.Reply, msgBlocked)
	}
	if f.resolver.calls != before {
		t.Error("resolver must not run for a blocked identity")
	}
}

func TestBlockedOutOfBandGetsOnsetOnce(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler(), noTool(""))
	f.sessions.Mutate("u1", func(s *session.Session) { s.Blocked = true })

	resp, _ := f.controller.Handle(context.Background(), Request{Identity: "u1", Message: "안녕"})
	if resp.Reply != msgBlockOnset {
		t.Errorf("first blocked reply = %q, want onset", resp.Reply)
	}
	resp, _ = f.controller.Handle(context.Background(), Request{Identity: "u1", Message: "안녕"})
	if resp.Reply != msgBlocked {
		t.Errorf("second blocked reply = %q, want fixed refusal", resp.Reply)
	}
}

func TestPendingFlowBypassesResolver(t *testing.T) {
	var confirmed bool
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/transactions/chat/delete/confirm" {
			confirmed = true
			_ = json.NewEncoder(w).Encode(ledger.ChatDeleteResult{Deleted: 1})
			return
		}
		t.Errorf("unexpected request %s", r.URL.Path)
	}), func(intent.Request) (*intent.Result, error) {
		t.Error("resolver must not run while a flow is pending")
		return &intent.Result{}, nil
	})

	f.sessions.Mutate("u1", func(s *session.Session) {
		_ = s.StartFlow(session.ActionDelete, session.TxExpense, []session.Candidate{
			{Number: 1, Date: "2026-08-27", Amount: 4500},
		})
	})

	resp, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Auth: "Bearer t", Message: "1번"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !confirmed {
		t.Error("confirm endpoint was not called")
	}
	if !strings.Contains(resp.Reply, "삭제 완료") {
		t.Errorf("unexpected reply %q", resp.Reply)
	}
	if snap := f.sessions.Snapshot("u1"); snap.HasPending() {
		t.Error("flow must be cleared after confirmation")
	}
}

func TestDisambiguationRoundTrip(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/transactions/chat/delete":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"candidates":[
				{"number":1,"date":"2026-08-27","amount":4500,"category":"외식"},
				{"number":2,"date":"2026-08-27","amount":12000,"category":"배달"},
				{"number":3,"date":"2026-08-27","amount":3000,"category":"교통"}
			]}`))
		case "/api/transactions/chat/delete/confirm":
			_ = json.NewEncoder(w).Encode(ledger.ChatDeleteResult{Deleted: 2})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}), proposeTool("delete_expense_by_chat", map[string]any{"date": "2026-08-27"}))

	resp, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Auth: "Bearer t", Message: "어제 지출 지워줘"})
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if len(resp.Candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(resp.Candidates))
	}
	if n := strings.Count(resp.Reply, "\n"); n < 3 {
		t.Errorf("candidate listing too short:\n%s", resp.Reply)
	}
	if got := f.sessions.Snapshot("u1"); got.PendingAction != session.ActionDelete || len(got.Candidates) != 3 {
		t.Fatalf("flow not opened: %+v", got)
	}

	resp, err = f.controller.Handle(context.Background(), Request{Identity: "u1", Auth: "Bearer t", Message: "1,3번 지워줘"})
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if !strings.Contains(resp.Reply, "2건 삭제 완료") {
		t.Errorf("unexpected reply %q", resp.Reply)
	}
}

func TestUpdateWithNoMatches(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no match"}`))
	}), proposeTool("update_expense_by_chat", map[string]any{"date": "2026-08-28"}))

	resp, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Auth: "Bearer t", Message: "어제 지출 수정하고 싶어"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Reply != "수정할 지출 내역이 없습니다." {
		t.Errorf("reply = %q", resp.Reply)
	}
	if snap := f.sessions.Snapshot("u1"); snap.HasPending() {
		t.Error("no flow must be created when there are no candidates")
	}
}

func TestAuthRequiredBeforeDispatch(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("ledger must not be called without a credential")
	}), proposeTool("list_expenses", map[string]any{}))

	resp, err := f.controller.Handle(context.Background(), Request{Identity: "anonymous", Message: "최근 지출 보여줘"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Reply != msgLoginRequired {
		t.Errorf("reply = %q, want login prompt", resp.Reply)
	}
}

func TestSignInWorksWithoutCredential(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/sign-in" {
			t.Errorf("unexpected request %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"token":"jwt123"}`))
	}), proposeTool("sign_in", map[string]any{"username": "hong", "password": "pw"}))

	resp, err := f.controller.Handle(context.Background(), Request{Identity: "anonymous", Message: "로그인해줘"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(resp.Reply, "jwt123") {
		t.Errorf("reply %q does not carry the token", resp.Reply)
	}
}

func TestInvalidArgumentsRejectedBeforeDispatch(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("ledger must not be called with invalid arguments")
	}), proposeTool("create_expense", map[string]any{
		"date": "2026-08-28", "amount": float64(4500), "category": "커피",
	}))

	resp, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Auth: "Bearer t", Message: "커피 4500원"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Reply != msgBadArguments {
		t.Errorf("reply = %q", resp.Reply)
	}
}

func TestRelativeDateNormalizedBeforeValidation(t *testing.T) {
	var gotDate string
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in ledger.TransactionInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		gotDate = in.Date
		_ = json.NewEncoder(w).Encode(1)
	}), proposeTool("create_expense", map[string]any{
		"date": "어제", "amount": float64(4500), "category": "외식",
	}))

	if _, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Auth: "Bearer t", Message: "어제 외식 4500원"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	want := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	// The boundary resolves in Asia/Seoul; around midnight UTC the local
	// calendar date may differ by one.
	alt := time.Now().Format("2006-01-02")
	if gotDate != want && gotDate != alt {
		t.Errorf("date = %q, want %q", gotDate, want)
	}
}

func TestResolverRateLimit(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler(), func(intent.Request) (*intent.Result, error) {
		return nil, intent.ErrRateLimit
	})
	resp, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Message: "아무거나"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Reply != msgResolverBusy {
		t.Errorf("reply = %q", resp.Reply)
	}
	if got := f.sessions.Snapshot("u1").NaturalCount; got != 0 {
		t.Errorf("resolver failure must not count as a natural turn, got %d", got)
	}
}

func TestAuditTrailRecordsTurns(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(9)
	}), proposeTool("create_expense", map[string]any{
		"date": "2026-08-28", "amount": float64(4500), "category": "외식",
	}))

	if _, err := f.controller.Handle(context.Background(), Request{Identity: "u1", Auth: "Bearer t", Message: "외식 4500원"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(f.auditor.entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(f.auditor.entries))
	}
	e := f.auditor.entries[0]
	if e.Tool != "create_expense" || !e.OK || e.Identity != "u1" {
		t.Errorf("unexpected audit entry %+v", e)
	}
	if e.TraceID == "" {
		t.Error("audit entry must carry a trace id")
	}
}
