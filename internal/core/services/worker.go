package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
)

const (
	// candidateFactor bounds raw candidates per resource to candidateFactor × cap.
	candidateFactor = 5

	// minLineLen is the minimum trimmed line length, in runes, worth parsing.
	minLineLen = 3

	// maxLineBytes is the longest line kept; longer lines are skipped.
	maxLineBytes = 64 * 1024
)

// resourceWorker streams one resource and returns its matching records.
type resourceWorker struct {
	streamer  driven.ResourceStreamer
	blacklist *Blacklist
}

// search scans res line by line and returns at most limit records in scan order.
//
// Lines are quick-rejected unless they contain at least one of tokens, and
// scanning stops once candidateFactor × limit candidates are collected.
// Cancellation of ctx is an expected exit: the candidates collected so far
// are still extracted and filtered. Stream failures return an error wrapping
// domain.ErrResourceRead and no records.
func (w *resourceWorker) search(
	ctx context.Context,
	res domain.Resource,
	tokens []string,
	criteria []domain.SearchCriterion,
	limit int,
	reqLog *log.Logger,
) ([]domain.Record, error) {
	if w.blacklist.Contains(res) {
		reqLog.Debug("skipping blacklisted resource", "resource", res.Key)
		return nil, nil
	}
	if ctx.Err() != nil {
		return nil, nil
	}

	body, err := w.streamer.OpenStream(ctx, res)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrResourceRead, res.Key, err)
	}

	// Closing the body unblocks a read in flight when the search is cancelled.
	var closeOnce sync.Once
	closeBody := func() { closeOnce.Do(func() { _ = body.Close() }) }
	stop := context.AfterFunc(ctx, closeBody)
	defer func() {
		stop()
		closeBody()
	}()

	maxCandidates := limit * candidateFactor
	candidates := make([]string, 0, min(maxCandidates, 64))
	reader := bufio.NewReaderSize(body, maxLineBytes)

	var readErr error
	for ctx.Err() == nil {
		line, skipped, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
		if skipped {
			continue
		}

		line = strings.TrimSpace(line)
		if !utf8.ValidString(line) || utf8.RuneCountInString(line) < minLineLen {
			continue
		}
		if !containsAny(strings.ToLower(line), tokens) {
			continue
		}

		candidates = append(candidates, line)
		if len(candidates) >= maxCandidates {
			break
		}
	}

	if readErr != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrResourceRead, res.Key, readErr)
	}

	return extractMatches(candidates, res.Name(), criteria, limit), nil
}

// readLine returns the next line without its terminator. Lines longer than
// the reader's buffer are consumed and reported as skipped.
func readLine(r *bufio.Reader) (line string, skipped bool, err error) {
	chunk, isPrefix, err := r.ReadLine()
	if err != nil {
		return "", false, err
	}
	if !isPrefix {
		return string(chunk), false, nil
	}
	for isPrefix {
		_, isPrefix, err = r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", true, nil
			}
			return "", false, err
		}
	}
	return "", true, nil
}

// extractMatches extracts every candidate and keeps at most limit records
// satisfying the criteria, in candidate order.
func extractMatches(candidates []string, source string, criteria []domain.SearchCriterion, limit int) []domain.Record {
	if len(candidates) == 0 {
		return nil
	}
	records := make([]domain.Record, 0, min(len(candidates), limit))
	for _, line := range candidates {
		rec := ExtractRecord(line, source)
		if !MatchesCriteria(rec, criteria) {
			continue
		}
		records = append(records, rec)
		if len(records) >= limit {
			break
		}
	}
	return records
}
