// Package matcher locates the learning resource most relevant to a question
// by racing a model-assisted catalog selection against a deterministic
// keyword search and reconciling the two.
package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/arjunvk/mentorloop/internal/model/resource"
)

const selectSystemPrompt = `You match a student's question to one entry of a learning-resource catalog.
Reply with a JSON object of the form {"index": N} where N is the zero-based
catalog index of the single most relevant entry, or {"index": -1} if nothing
is relevant. Tolerate typos and fuzzy phrasing in the question. When several
entries could match, prefer the one whose keyword tags overlap the question
the most. Output only the JSON object.`

// Selector is the slice of the provider chain the matcher needs. Satisfied by
// *provider.Chain.
type Selector interface {
	CompleteWith(ctx context.Context, system, question string, accept func(reply string) bool) (string, error)
	Len() int
}

// Matcher reconciles two independent matching strategies over one catalog.
type Matcher struct {
	catalog *resource.Catalog
	chain   Selector
}

// New builds a Matcher. chain may be nil; matching then relies on the keyword
// strategy alone.
func New(catalog *resource.Catalog, chain Selector) *Matcher {
	return &Matcher{catalog: catalog, chain: chain}
}

// Match runs both strategies concurrently, waits for both, and returns the
// model pick when present, otherwise the keyword pick, otherwise nil. Each
// branch handles its own failure; one failing never aborts the other.
func (m *Matcher) Match(ctx context.Context, question string) *resource.Resource {
	var (
		modelPick   *resource.Resource
		keywordPick *resource.Resource
		wg          sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		modelPick = m.selectByModel(ctx, question)
	}()
	go func() {
		defer wg.Done()
		keywordPick = KeywordMatch(m.catalog, question)
	}()
	wg.Wait()

	if modelPick != nil {
		return modelPick
	}
	return keywordPick
}

// selectByModel asks the matcher's own provider chain for a catalog index.
// An unparseable or out-of-range reply counts as a provider failure and the
// sub-chain advances; when the whole sub-chain yields nothing usable the
// result degrades to no match.
func (m *Matcher) selectByModel(ctx context.Context, question string) *resource.Resource {
	if m.chain == nil || m.chain.Len() == 0 {
		return nil
	}

	usable := func(reply string) bool {
		idx, ok := parseIndex(reply)
		return ok && (idx == -1 || idx >= 0 && idx < m.catalog.Len())
	}

	reply, err := m.chain.CompleteWith(ctx, selectSystemPrompt, m.buildPrompt(question), usable)
	if err != nil {
		log.Printf("[matcher] model selection failed, keyword strategy decides: %v", err)
		return nil
	}

	idx, _ := parseIndex(reply)
	picked, ok := m.catalog.ByIndex(idx)
	if !ok {
		// idx == -1: the model explicitly judged nothing relevant.
		return nil
	}
	return &picked
}

func (m *Matcher) buildPrompt(question string) string {
	var b strings.Builder
	b.WriteString("Catalog:\n")
	for i, item := range m.catalog.List() {
		fmt.Fprintf(&b, "%d. [%s / %s] %s — tags: %s\n",
			i, item.Subject, item.UnitTitle, item.Title, strings.Join(item.Keywords, ", "))
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// parseIndex extracts a catalog index from a model reply. It first looks for
// a JSON object with an "index" field anywhere in the text, then falls back
// to the first bare integer token.
func parseIndex(reply string) (int, bool) {
	trimmed := strings.TrimSpace(reply)

	if start, end := strings.Index(trimmed, "{"), strings.LastIndex(trimmed, "}"); start != -1 && end > start {
		var payload struct {
			Index *int `json:"index"`
		}
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err == nil && payload.Index != nil {
			return *payload.Index, true
		}
	}

	for _, field := range strings.Fields(trimmed) {
		field = strings.Trim(field, ".,;:\"'`()[]")
		if n, err := strconv.Atoi(field); err == nil {
			return n, true
		}
	}
	return 0, false
}
