package structured

import (
	"bytes"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Result is the outcome of Extract.
type Result struct {
	// Prose is the reply with every tagged block removed.
	Prose string
	Reply Reply
	// Errors holds one *MalformedBlockError per dropped block.
	Errors []error
}

type span struct {
	start, end int
}

type taggedBlock struct {
	kind Kind
	body string
	span span
	// closed is false when the fence runs to the end of the reply.
	closed bool
}

var markdown = goldmark.New()

// Extract scans reply for tagged blocks, parses each one independently and
// strips all of them from the prose. A malformed block is dropped without
// affecting the others. The first valid block of each kind wins. A reply
// without tagged blocks is returned unchanged.
func Extract(reply string) *Result {
	src := []byte(reply)
	blocks := findBlocks(src)
	if len(blocks) == 0 {
		return &Result{Prose: reply}
	}

	result := &Result{}
	for _, b := range blocks {
		if !b.closed {
			result.Errors = append(result.Errors, &MalformedBlockError{Kind: b.kind, Reason: "unterminated fence"})
			continue
		}
		if err := result.apply(b); err != nil {
			slog.Debug("dropping structured block", "kind", b.kind, "error", err)
			result.Errors = append(result.Errors, err)
		}
	}
	result.Prose = string(strip(src, blocks))
	return result
}

func (r *Result) apply(b taggedBlock) error {
	switch b.kind {
	case KindNutrition:
		s, err := parseNutrition(b.body)
		if err != nil {
			return err
		}
		if r.Reply.Nutrition == nil {
			r.Reply.Nutrition = s
		}
	case KindCalendar:
		days, err := parseCalendar(b.body)
		if err != nil {
			return err
		}
		if r.Reply.Calendar == nil {
			r.Reply.Calendar = days
		}
	case KindSummary:
		s, err := parseSummary(b.body)
		if err != nil {
			return err
		}
		if r.Reply.Summary == "" {
			r.Reply.Summary = s
		}
	}
	return nil
}

func findBlocks(src []byte) []taggedBlock {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var blocks []taggedBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok || fenced.Info == nil {
			return ast.WalkContinue, nil
		}
		kind, ok := parseKind(string(fenced.Info.Segment.Value(src)))
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		blocks = append(blocks, newTaggedBlock(src, kind, fenced))
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

func newTaggedBlock(src []byte, kind Kind, fenced *ast.FencedCodeBlock) taggedBlock {
	infoStart := fenced.Info.Segment.Start
	start := bytes.LastIndexByte(src[:infoStart], '\n') + 1

	var body bytes.Buffer
	lines := fenced.Lines()
	contentEnd := lineEnd(src, fenced.Info.Segment.Stop)
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		body.Write(seg.Value(src))
		contentEnd = seg.Stop
	}

	// The closing fence is the line right after the content, inside the
	// same number of blockquotes as the opening fence.
	depth, _ := unquote(src[start:infoStart])
	end, closed := contentEnd, false
	if contentEnd < len(src) {
		closeEnd := lineEnd(src, contentEnd)
		closeDepth, line := unquote(src[contentEnd:closeEnd])
		line = bytes.TrimSpace(line)
		if closeDepth == depth && (bytes.HasPrefix(line, []byte("```")) || bytes.HasPrefix(line, []byte("~~~"))) {
			end, closed = closeEnd, true
		}
	}

	return taggedBlock{
		kind:   kind,
		body:   body.String(),
		span:   span{start: start, end: end},
		closed: closed,
	}
}

// unquote strips leading blockquote markers from line and returns how many
// there were.
func unquote(line []byte) (int, []byte) {
	depth := 0
	for {
		line = bytes.TrimLeft(line, " \t")
		if len(line) == 0 || line[0] != '>' {
			return depth, line
		}
		depth++
		line = line[1:]
	}
}

// lineEnd returns the offset just past the newline ending the line at pos.
func lineEnd(src []byte, pos int) int {
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(src)
}

func strip(src []byte, blocks []taggedBlock) []byte {
	var out bytes.Buffer
	prev := 0
	for _, b := range blocks {
		if b.span.start < prev {
			continue
		}
		out.Write(src[prev:b.span.start])
		prev = b.span.end
	}
	out.Write(src[prev:])
	return collapseBlankLines(out.Bytes())
}
