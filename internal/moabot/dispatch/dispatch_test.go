package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moadev/moabot/internal/moabot/intent"
	"github.com/moadev/moabot/internal/moabot/ledger"
	"github.com/moadev/moabot/internal/moabot/session"
)

func newTestDispatcher(t *testing.T, handler http.Handler) (*Dispatcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	d := New(ledger.New(ledger.Config{BaseURL: srv.URL}), nil)
	return d, srv
}

func applyMutation(t *testing.T, mut Mutation) session.Session {
	t.Helper()
	var s session.Session
	if mut != nil {
		mut(&s)
	}
	return s
}

func TestCreateExpense(t *testing.T) {
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transactions" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in ledger.TransactionInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Amount != 4500 || in.Category != "외식" {
			t.Errorf("unexpected payload %+v", in)
		}
		_ = json.NewEncoder(w).Encode(7)
	}))

	reply, mut := d.Dispatch(context.Background(), "Bearer tok", intent.Invocation{
		Name: "create_expense",
		Arguments: map[string]any{
			"date": "2026-08-28", "amount": float64(4500), "category": "외식", "memo": "점심",
		},
	}, session.Session{})

	if !reply.OK {
		t.Fatalf("reply not ok: %+v", reply)
	}
	if reply.Message != "2026-08-28 4,500원 외식 지출 등록 완료 (ID 7)" {
		t.Errorf("unexpected message %q", reply.Message)
	}
	if mut != nil {
		t.Error("create must not mutate the session")
	}
}

func TestDeleteByChatConflictOpensFlow(t *testing.T) {
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"ambiguous","candidates":[
			{"number":1,"date":"2026-08-27","amount":4500,"category":"외식","memo":"점심"},
			{"number":2,"date":"2026-08-27","amount":12000,"category":"배달","memo":""}
		]}`))
	}))

	reply, mut := d.Dispatch(context.Background(), "Bearer tok", intent.Invocation{
		Name:      "delete_expense_by_chat",
		Arguments: map[string]any{"date": "2026-08-27"},
	}, session.Session{})

	if reply.OK {
		t.Fatal("conflict reply must not be ok")
	}
	if len(reply.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(reply.Candidates))
	}
	s := applyMutation(t, mut)
	if s.PendingAction != session.ActionDelete || s.PendingTxType != session.TxExpense {
		t.Errorf("pending flow not opened: %+v", s)
	}
	if len(s.Candidates) != 2 {
		t.Errorf("session holds %d candidates, want 2", len(s.Candidates))
	}
}

func pendingDelete() session.Session {
	var s session.Session
	_ = s.StartFlow(session.ActionDelete, session.TxExpense, []session.Candidate{
		{Number: 1, Date: "2026-08-27", Amount: 4500, Category: "외식", Memo: "점심"},
		{Number: 2, Date: "2026-08-27", Amount: 12000, Category: "배달"},
	})
	return s
}

func TestConfirmDeleteAll(t *testing.T) {
	var got []int
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Selections []int `json:"selections"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = body.Selections
		_ = json.NewEncoder(w).Encode(ledger.ChatDeleteResult{Deleted: len(body.Selections)})
	}))

	reply, mut := d.Confirm(context.Background(), "Bearer tok", "모두 지워줘", pendingDelete())
	if !reply.OK {
		t.Fatalf("reply not ok: %+v", reply)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("selections = %v, want [1 2]", got)
	}
	if s := applyMutation(t, mut); s.HasPending() {
		t.Error("flow must be cleared after confirm")
	}
}

func TestConfirmDeleteIntersection(t *testing.T) {
	var got []int
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Selections []int `json:"selections"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = body.Selections
		_ = json.NewEncoder(w).Encode(ledger.ChatDeleteResult{Deleted: 1})
	}))

	reply, _ := d.Confirm(context.Background(), "Bearer tok", "1,3번", pendingDelete())
	if !reply.OK {
		t.Fatalf("reply not ok: %+v", reply)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("selections = %v, want [1]", got)
	}
}

func TestConfirmDeleteOutOfRangeFailsClosed(t *testing.T) {
	called := false
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	reply, mut := d.Confirm(context.Background(), "Bearer tok", "9번", pendingDelete())
	if reply.OK || reply.Err != KindProtocol {
		t.Fatalf("want protocol failure, got %+v", reply)
	}
	if called {
		t.Error("ledger must not be called for an empty intersection")
	}
	s := pendingDelete()
	mut(&s)
	if s.HasPending() {
		t.Error("flow must be cleared (fail closed)")
	}
}

func TestConfirmCancelBeatsNumbers(t *testing.T) {
	called := false
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	reply, mut := d.Confirm(context.Background(), "Bearer tok", "1번 취소할래", pendingDelete())
	if !reply.OK {
		t.Fatalf("cancel must be ok: %+v", reply)
	}
	if called {
		t.Error("ledger must not be called on cancel")
	}
	s := pendingDelete()
	mut(&s)
	if s.HasPending() {
		t.Error("cancel must clear the flow")
	}
}

func TestConfirmDeleteTransportKeepsFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // every call now fails at the transport level
	d := New(ledger.New(ledger.Config{BaseURL: srv.URL}), nil)

	reply, mut := d.Confirm(context.Background(), "Bearer tok", "1번", pendingDelete())
	if reply.OK {
		t.Fatal("transport failure must not be ok")
	}
	if reply.Err != ledger.KindTransport {
		t.Errorf("err = %q, want transport", reply.Err)
	}
	if mut != nil {
		t.Error("transport failure must leave the pending flow untouched")
	}
}

func pendingUpdate() session.Session {
	var s session.Session
	_ = s.StartFlow(session.ActionUpdate, session.TxExpense, []session.Candidate{
		{Number: 1, Date: "2026-01-01", Amount: 1000, Category: "생활", Memo: "a"},
		{Number: 2, Date: "2026-01-02", Amount: 3000, Category: "교통", Memo: "b"},
	})
	return s
}

func TestConfirmUpdateMergesPatch(t *testing.T) {
	var got struct {
		Type           session.TxType          `json:"type"`
		CandidateIndex int                     `json:"candidateIndex"`
		NewData        ledger.TransactionInput `json:"newData"`
	}
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))

	reply, mut := d.Confirm(context.Background(), "Bearer tok", "1번 금액 2,000원으로 바꿔줘", pendingUpdate())
	if !reply.OK {
		t.Fatalf("reply not ok: %+v", reply)
	}
	if got.CandidateIndex != 1 {
		t.Errorf("candidateIndex = %d, want 1", got.CandidateIndex)
	}
	want := ledger.TransactionInput{
		Type: session.TxExpense, Date: "2026-01-01", Amount: 2000, Category: "생활", Memo: "a",
	}
	if got.NewData != want {
		t.Errorf("newData = %+v, want %+v", got.NewData, want)
	}
	s := pendingUpdate()
	mut(&s)
	if s.HasPending() {
		t.Error("flow must be cleared after confirm")
	}
}

func TestConfirmUpdateSingleCandidateNeedsNoNumber(t *testing.T) {
	var got struct {
		CandidateIndex int `json:"candidateIndex"`
	}
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))

	var s session.Session
	_ = s.StartFlow(session.ActionUpdate, session.TxExpense, []session.Candidate{
		{Number: 1, Date: "2026-01-01", Amount: 1000, Category: "생활"},
	})

	reply, _ := d.Confirm(context.Background(), "Bearer tok", "메모 회식으로 바꿔줘", s)
	if !reply.OK {
		t.Fatalf("reply not ok: %+v", reply)
	}
	if got.CandidateIndex != 1 {
		t.Errorf("candidateIndex = %d, want 1", got.CandidateIndex)
	}
}

func TestConfirmUpdateNothingUsableAborts(t *testing.T) {
	called := false
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	reply, mut := d.Confirm(context.Background(), "Bearer tok", "음 글쎄", pendingUpdate())
	if reply.OK || reply.Err != KindProtocol {
		t.Fatalf("want protocol failure, got %+v", reply)
	}
	if called {
		t.Error("ledger must not be called")
	}
	s := pendingUpdate()
	mut(&s)
	if s.HasPending() {
		t.Error("flow must be cleared (fail closed)")
	}
}

func TestConfirmUpdatePatchDigitsAreNotASelection(t *testing.T) {
	// "2,000원" and "2026-01-02" carry digits that intersect the candidate
	// numbers; with several candidates pending they must not pick one.
	for _, text := range []string{
		"2,000원으로 바꿔줘",
		"날짜를 2026-01-02로 바꿔줘",
	} {
		called := false
		d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		reply, mut := d.Confirm(context.Background(), "Bearer tok", text, pendingUpdate())
		if reply.OK || reply.Err != KindProtocol {
			t.Fatalf("%q: want protocol failure, got %+v", text, reply)
		}
		if called {
			t.Errorf("%q: ledger must not be called", text)
		}
		s := pendingUpdate()
		mut(&s)
		if s.HasPending() {
			t.Errorf("%q: flow must be cleared (fail closed)", text)
		}
	}
}

func TestListLimitClamped(t *testing.T) {
	var gotLimit string
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`[]`))
	}))

	_, _ = d.Dispatch(context.Background(), "Bearer tok", intent.Invocation{
		Name:      "list_expenses",
		Arguments: map[string]any{"limit": float64(500)},
	}, session.Session{})
	if gotLimit != "50" {
		t.Errorf("limit = %q, want clamped to 50", gotLimit)
	}
}

func TestOverlappingFlowRejected(t *testing.T) {
	called := false
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	reply, mut := d.Dispatch(context.Background(), "Bearer tok", intent.Invocation{
		Name:      "delete_expense_by_chat",
		Arguments: map[string]any{"date": "2026-08-27"},
	}, pendingDelete())

	if reply.Err != KindProtocol {
		t.Fatalf("want protocol rejection, got %+v", reply)
	}
	if called {
		t.Error("ledger must not be called while a flow is pending")
	}
	if mut != nil {
		t.Error("rejection must not mutate the session")
	}
}

func TestBatchCreatePartialFailure(t *testing.T) {
	n := 0
	d, _ := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		if n == 2 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"bad"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(n)
	}))

	reply, _ := d.Dispatch(context.Background(), "Bearer tok", intent.Invocation{
		Name: "create_expense_batch",
		Arguments: map[string]any{"transactions": []any{
			map[string]any{"date": "2026-08-01", "amount": float64(1000), "category": "교통"},
			map[string]any{"date": "2026-08-02", "amount": float64(2000), "category": "생활"},
			map[string]any{"date": "2026-08-03", "amount": float64(3000), "category": "기타"},
		}},
	}, session.Session{})

	if !reply.OK {
		t.Fatalf("partial success must still be ok: %+v", reply)
	}
	if n != 3 {
		t.Errorf("ledger called %d times, want 3 (no early stop)", n)
	}
	if reply.Message != "지출 2건 등록 완료, 1건 실패" {
		t.Errorf("unexpected message %q", reply.Message)
	}
	if len(reply.Items) != 3 {
		t.Errorf("got %d item lines, want 3", len(reply.Items))
	}
}

func TestResolveDate(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, seoul)
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2026-01-15", "2026-01-15", true},
		{"오늘", "2026-08-29", true},
		{"어제", "2026-08-28", true},
		{"내일", "2026-08-30", true},
		{"그저께", "2026-08-27", true},
		{"모레", "2026-08-31", true},
		{"3일 전", "2026-08-26", true},
		{"10일 후", "2026-09-08", true},
		{"글쎄", "", false},
	}
	for _, tt := range tests {
		got, ok := ResolveDate(tt.in, now)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ResolveDate(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeDateArgs(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, seoul)
	args := map[string]any{
		"date": "어제",
		"transactions": []any{
			map[string]any{"date": "오늘", "amount": float64(1000)},
			map[string]any{"date": "2026-01-15"},
		},
		"newData": map[string]any{"date": "모레"},
	}

	NormalizeDateArgs(args, now)

	if got := args["date"]; got != "2026-08-28" {
		t.Errorf("date = %v, want 2026-08-28", got)
	}
	txs := args["transactions"].([]any)
	if got := txs[0].(map[string]any)["date"]; got != "2026-08-29" {
		t.Errorf("transactions[0].date = %v, want 2026-08-29", got)
	}
	if got := txs[1].(map[string]any)["date"]; got != "2026-01-15" {
		t.Errorf("transactions[1].date = %v, want unchanged", got)
	}
	if got := args["newData"].(map[string]any)["date"]; got != "2026-08-31" {
		t.Errorf("newData.date = %v, want 2026-08-31", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseUpdatePatch(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, seoul)
	p, ok := parseUpdatePatch("금액 9,000원, 날짜는 어제, 메모 회식으로", now)
	if !ok {
		t.Fatal("patch not recognised")
	}
	if p.amount == nil || *p.amount != 9000 {
		t.Errorf("amount = %v, want 9000", p.amount)
	}
	if p.date != "2026-08-28" {
		t.Errorf("date = %q, want 2026-08-28", p.date)
	}
	if p.memo == nil || *p.memo != "회식" {
		t.Errorf("memo = %v, want 회식", p.memo)
	}

	if _, ok := parseUpdatePatch("2번", now); ok {
		t.Error("bare selection must not count as a patch")
	}
}
