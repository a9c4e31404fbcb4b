package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/reqsift/internal/extract"
	"github.com/ppiankov/reqsift/internal/llm"
)

// mockClient implements llm.Client, answering each call from a queue
type mockClient struct {
	replies []string
	err     error
	reqs    []llm.Request
}

func (m *mockClient) Name() string { return "mock" }

func (m *mockClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return nil, m.err
	}
	text := `[{"req_id":"AI-1","text_original":"extracted"}]`
	if len(m.replies) > 0 {
		text = m.replies[0]
		m.replies = m.replies[1:]
	}
	return &llm.Response{Text: text, Model: "m", Provider: "mock"}, nil
}

func TestImport_DirectJSONSkipsModel(t *testing.T) {
	client := &mockClient{}
	imp := New(client)

	res, err := imp.Import(context.Background(), `[{"req_id":"R-1","text_original":"x"}]`)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(client.reqs) != 0 {
		t.Errorf("expected no model calls, got %d", len(client.reqs))
	}
	if res.Route != RouteDirect || len(res.Requirements) != 1 || res.Requirements[0].ReqID != "R-1" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestImport_DirectBareObject(t *testing.T) {
	client := &mockClient{}
	res, err := New(client).Import(context.Background(), `  {"criticality":"MUST","text_original":"single"}  `)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(client.reqs) != 0 || res.Route != RouteDirect || len(res.Requirements) != 1 {
		t.Errorf("expected direct single record, got %+v (calls=%d)", res, len(client.reqs))
	}
	if res.Requirements[0].Criticality != "MUST" {
		t.Errorf("unexpected record %+v", res.Requirements[0])
	}
}

func TestImport_UnshapedJSONGoesToModel(t *testing.T) {
	client := &mockClient{}
	res, err := New(client).Import(context.Background(), `{"countries":["DE","FR"]}`)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(client.reqs) != 1 {
		t.Fatalf("expected one model call, got %d", len(client.reqs))
	}
	if res.Route != RouteExtracted || res.Requirements[0].ReqID != "AI-1" {
		t.Errorf("unexpected result %+v", res)
	}

	req := client.reqs[0]
	if req.Task != llm.TaskExtract || !req.JSON {
		t.Errorf("expected JSON extraction request, got %+v", req)
	}
	if !strings.HasPrefix(req.User, "EXTRACT REQUIREMENTS FROM THIS PARTIAL TEXT:\n\n") || !strings.Contains(req.User, "countries") {
		t.Errorf("unexpected user message %q", req.User)
	}
	if !strings.Contains(req.System, `"req_id"`) || !strings.Contains(req.System, `"ctonote"`) {
		t.Errorf("system instruction misses the schema: %q", req.System)
	}
}

func TestImport_EmptyArrayGoesToModel(t *testing.T) {
	client := &mockClient{}
	if _, err := New(client).Import(context.Background(), `[]`); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(client.reqs) != 1 {
		t.Errorf("expected one model call, got %d", len(client.reqs))
	}
}

func TestImport_RepairsConcatenatedArrays(t *testing.T) {
	client := &mockClient{}
	res, err := New(client).Import(context.Background(), "[{\"req_id\":\"R-1\"}]\n[{\"req_id\":\"R-2\"}]")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(client.reqs) != 0 {
		t.Errorf("expected no model calls, got %d", len(client.reqs))
	}
	if res.Route != RouteRepaired || len(res.Requirements) != 2 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestImport_FreeTextChunksInOrder(t *testing.T) {
	client := &mockClient{replies: []string{
		"```json\n[{\"req_id\":\"C1\"}]\n```",
		`Sure: {"req_id":"C2"}`,
		`[{"req_id":"C3"},{"req_id":"C3b"}]`,
	}}
	text := strings.Repeat("a", 40) + "\n\n" + strings.Repeat("b", 40) + "\n\n" + strings.Repeat("c", 40)

	res, err := New(client, WithChunkSize(50)).Import(context.Background(), text)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Chunks != 3 || len(client.reqs) != 3 {
		t.Fatalf("expected 3 chunks and calls, got %d / %d", res.Chunks, len(client.reqs))
	}
	for n, want := range []string{"aaaa", "bbbb", "cccc"} {
		if !strings.Contains(client.reqs[n].User, want) {
			t.Errorf("call %d carried the wrong chunk: %q", n, client.reqs[n].User)
		}
	}

	var ids []string
	for _, r := range res.Requirements {
		ids = append(ids, r.ReqID)
	}
	if strings.Join(ids, ",") != "C1,C2,C3,C3b" {
		t.Errorf("unexpected ids %v", ids)
	}
}

func TestImport_UnparseableModelOutput(t *testing.T) {
	client := &mockClient{replies: []string{"I could not find any requirements."}}
	_, err := New(client).Import(context.Background(), "The system shall log.")
	if !errors.Is(err, extract.ErrUnparseableResponse) {
		t.Errorf("expected ErrUnparseableResponse, got %v", err)
	}
}

func TestImport_ModelErrorAbortsRemainingChunks(t *testing.T) {
	hard := errors.New("permission denied")
	client := &mockClient{err: hard}
	text := strings.Repeat("x", 30) + "\n\n" + strings.Repeat("y", 30)

	_, err := New(client, WithChunkSize(40)).Import(context.Background(), text)
	if !errors.Is(err, hard) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(client.reqs) != 1 {
		t.Errorf("expected processing to stop after the first failed chunk, got %d calls", len(client.reqs))
	}
}

func TestImport_EmptyModelResponse(t *testing.T) {
	client := &mockClient{replies: []string{"   "}}
	_, err := New(client).Import(context.Background(), "free text")
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestImport_ModelReturnsNoRecords(t *testing.T) {
	client := &mockClient{replies: []string{"[]"}}
	_, err := New(client).Import(context.Background(), "free text")
	if !errors.Is(err, ErrEmptyImport) {
		t.Errorf("expected ErrEmptyImport, got %v", err)
	}
}

func TestImport_EmptyInput(t *testing.T) {
	client := &mockClient{}
	if _, err := New(client).Import(context.Background(), " \n\t "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if len(client.reqs) != 0 {
		t.Error("blank input must not reach the model")
	}
}

func TestImport_NoProvider(t *testing.T) {
	if _, err := New(nil).Import(context.Background(), "free text"); !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
	if _, err := New(nil).Import(context.Background(), `[{"req_id":"R-1"}]`); err != nil {
		t.Errorf("structured input must work without a provider: %v", err)
	}
}

func TestImport_DemoProvider(t *testing.T) {
	res, err := New(llm.NewDemoClient(0)).Import(context.Background(), "Source of Truth is Postgres.")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Route != RouteExtracted || len(res.Requirements) != 5 {
		t.Errorf("expected the sample corpus via demo extraction, got %+v", res)
	}
}

func TestLooksLikeRequirements(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`[{"req_id":"R-1"}]`, true},
		{`{"source_doc":"a"}`, true},
		{`[{"criticality":"MUST"},{"x":1}]`, true},
		{`[{"x":1},{"req_id":"R-1"}]`, false},
		{`[]`, false},
		{`["a"]`, false},
		{`42`, false},
	}
	for _, tt := range tests {
		v, err := extract.Decode(tt.input)
		if err != nil {
			t.Fatalf("decode %s: %v", tt.input, err)
		}
		if got := looksLikeRequirements(v); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.input, got, tt.want)
		}
	}
}
