package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// failingStreamer returns a stream that errors after its content.
type failingStreamer struct {
	content string
	err     error
}

func (f *failingStreamer) OpenStream(_ context.Context, _ domain.Resource) (io.ReadCloser, error) {
	return io.NopCloser(io.MultiReader(strings.NewReader(f.content), &errReader{err: f.err})), nil
}

type errReader struct{ err error }

func (e *errReader) Read(_ []byte) (int, error) { return 0, e.err }

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestWorker(store *memory.ObjectStore, blacklist ...string) *resourceWorker {
	return &resourceWorker{streamer: store, blacklist: NewBlacklist(blacklist)}
}

func criteriaOf(values ...string) ([]string, []domain.SearchCriterion) {
	criteria := make([]domain.SearchCriterion, 0, len(values))
	for _, v := range values {
		criteria = append(criteria, domain.SearchCriterion{Value: v})
	}
	return domain.SearchTokens(criteria), criteria
}

func TestWorker_ReturnsMatchesInScanOrder(t *testing.T) {
	store := memory.NewObjectStore()
	store.Put("data-files/a.txt", "alice@example.com:one\nbob@example.com:two\nalice@test.org:three\n")
	w := newTestWorker(store)

	tokens, criteria := criteriaOf("alice")
	got, err := w.search(context.Background(), domain.Resource{Key: "data-files/a.txt"}, tokens, criteria, 10, testLogger())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice@example.com:one", got[0].Raw())
	assert.Equal(t, "alice@test.org:three", got[1].Raw())
	assert.Equal(t, "a.txt", got[0].Source())
}

func TestWorker_NeverExceedsCap(t *testing.T) {
	var sb strings.Builder
	for i := range 500 {
		fmt.Fprintf(&sb, "alice%d@example.com:pw%d\n", i, i)
	}
	store := memory.NewObjectStore()
	store.Put("a.txt", sb.String())
	w := newTestWorker(store)

	tokens, criteria := criteriaOf("alice")
	got, err := w.search(context.Background(), domain.Resource{Key: "a.txt"}, tokens, criteria, 7, testLogger())
	require.NoError(t, err)
	assert.Len(t, got, 7)
}

func TestWorker_StopsAfterCandidateBudget(t *testing.T) {
	// Every line passes the quick-reject but only the last one satisfies
	// both criteria; it lies beyond 5 × cap candidates.
	var sb strings.Builder
	for i := range 2 * candidateFactor {
		fmt.Fprintf(&sb, "alice:%d\n", i)
	}
	sb.WriteString("alice:zzz\n")
	store := memory.NewObjectStore()
	store.Put("a.txt", sb.String())
	w := newTestWorker(store)

	tokens, criteria := criteriaOf("alice", "zzz")
	got, err := w.search(context.Background(), domain.Resource{Key: "a.txt"}, tokens, criteria, 2, testLogger())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = w.search(context.Background(), domain.Resource{Key: "a.txt"}, tokens, criteria, 3, testLogger())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWorker_SkipsShortInvalidAndLongLines(t *testing.T) {
	content := "ab\n" +
		"ab\xff\xfe:x\n" +
		strings.Repeat("ab", maxLineBytes) + "\n" +
		"   \n" +
		"  abc:ok  \n"
	store := memory.NewObjectStore()
	store.Put("a.txt", content)
	w := newTestWorker(store)

	tokens, criteria := criteriaOf("ab")
	got, err := w.search(context.Background(), domain.Resource{Key: "a.txt"}, tokens, criteria, 10, testLogger())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "abc:ok", got[0].Raw())
}

func TestWorker_LastLineWithoutNewline(t *testing.T) {
	store := memory.NewObjectStore()
	store.Put("a.txt", "zzz\nalice:pw")
	w := newTestWorker(store)

	tokens, criteria := criteriaOf("alice")
	got, err := w.search(context.Background(), domain.Resource{Key: "a.txt"}, tokens, criteria, 10, testLogger())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWorker_BlacklistedResource(t *testing.T) {
	store := memory.NewObjectStore()
	store.Put("data-files/PassSport.csv", "alice:pw\n")
	w := newTestWorker(store, domain.DefaultBlacklist()...)

	tokens, criteria := criteriaOf("alice")
	got, err := w.search(context.Background(), domain.Resource{Key: "data-files/PassSport.csv"}, tokens, criteria, 10, testLogger())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, store.Opens())
}

func TestWorker_OpenError(t *testing.T) {
	store := memory.NewObjectStore()
	store.Put("a.txt", "alice:pw\n")
	store.FailOpen("a.txt", errors.New("access denied"))
	w := newTestWorker(store)

	tokens, criteria := criteriaOf("alice")
	got, err := w.search(context.Background(), domain.Resource{Key: "a.txt"}, tokens, criteria, 10, testLogger())
	assert.ErrorIs(t, err, domain.ErrResourceRead)
	assert.Empty(t, got)
}

func TestWorker_ReadErrorMeansZeroResults(t *testing.T) {
	w := &resourceWorker{streamer: &failingStreamer{content: "alice:pw\n", err: errors.New("connection reset")}}

	tokens, criteria := criteriaOf("alice")
	got, err := w.search(context.Background(), domain.Resource{Key: "a.txt"}, tokens, criteria, 10, testLogger())
	assert.ErrorIs(t, err, domain.ErrResourceRead)
	assert.Empty(t, got)
}

func TestWorker_CancelledBeforeStart(t *testing.T) {
	store := memory.NewObjectStore()
	store.Put("a.txt", "alice:pw\n")
	w := newTestWorker(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tokens, criteria := criteriaOf("alice")
	got, err := w.search(ctx, domain.Resource{Key: "a.txt"}, tokens, criteria, 10, testLogger())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, store.Opens())
}

func TestWorker_CancelMidStreamKeepsCollected(t *testing.T) {
	store := memory.NewObjectStore()
	store.Put("a.txt", "alice:one\nalice:two\n")
	store.Block("a.txt")
	w := newTestWorker(store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []domain.Record, 1)
	go func() {
		tokens, criteria := criteriaOf("alice")
		got, err := w.search(ctx, domain.Resource{Key: "a.txt"}, tokens, criteria, 10, testLogger())
		assert.NoError(t, err)
		done <- got
	}()

	cancel()
	got := <-done
	assert.LessOrEqual(t, len(got), 2)
	for _, rec := range got {
		assert.Contains(t, rec.Raw(), "alice")
	}
}
