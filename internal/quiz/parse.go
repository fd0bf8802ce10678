package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"quizify/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Parser turns a raw model response into a validated question.
type Parser struct {
	md         goldmark.Markdown
	maxChoices int
}

func NewParser(maxChoices int) *Parser {
	return &Parser{md: goldmark.New(), maxChoices: maxChoices}
}

type rawQuestion struct {
	Question string          `json:"question"`
	Choices  []models.Choice `json:"choices"`
	Answer   json.RawMessage `json:"answer"`
}

// Parse extracts the JSON object from raw, decodes it and checks it. All
// failures wrap models.ErrValidation.
func (p *Parser) Parse(raw string) (models.QuizQuestion, error) {
	body, err := p.ExtractJSON(raw)
	if err != nil {
		return models.QuizQuestion{}, err
	}

	var rq rawQuestion
	if err := json.Unmarshal([]byte(body), &rq); err != nil {
		return models.QuizQuestion{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	q := models.QuizQuestion{
		Question: strings.TrimSpace(rq.Question),
		Choices:  make([]models.Choice, len(rq.Choices)),
	}
	for i, c := range rq.Choices {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			key = models.ChoiceLabel(i)
		}
		q.Choices[i] = models.Choice{Key: key, Value: strings.TrimSpace(c.Value)}
	}

	q.Answer, err = answerIndex(rq.Answer, q.Choices)
	if err != nil {
		return models.QuizQuestion{}, err
	}
	if err := q.Validate(p.maxChoices); err != nil {
		return models.QuizQuestion{}, err
	}
	return q, nil
}

// ExtractJSON prefers the first fenced or indented code block holding an
// object and falls back to the outermost pair of braces.
func (p *Parser) ExtractJSON(raw string) (string, error) {
	source := []byte(raw)
	doc := p.md.Parser().Parse(text.NewReader(source))

	var found string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			var buf bytes.Buffer
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(source))
			}
			block := strings.TrimSpace(buf.String())
			if strings.HasPrefix(block, "{") {
				found = block
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if found != "" {
		return found, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in response", models.ErrValidation)
	}
	return raw[start : end+1], nil
}

// answerIndex accepts a zero-based index, a choice key or a numeric string.
// A string is matched against the keys first, so numbered keys win over
// reading the string as an index.
func answerIndex(raw json.RawMessage, choices []models.Choice) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: answer is missing", models.ErrValidation)
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%w: answer must be an index, got %s", models.ErrValidation, raw)
	}
	s = strings.TrimSpace(s)
	for i, c := range choices {
		if strings.EqualFold(c.Key, s) {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("%w: answer %q matches no choice", models.ErrValidation, s)
}
