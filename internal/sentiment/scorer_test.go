package sentiment

import (
	"math"
	"testing"

	"stock-advisor/internal/types"
)

func TestScoreEmptyText(t *testing.T) {
	s := NewScorer()
	res := s.Score("")
	if res.Label != LabelNeutral {
		t.Errorf("Expected neutral label for empty text, got %s", res.Label)
	}
	if res.Confidence != 0 || res.Score != 0 {
		t.Errorf("Expected zero score and confidence, got %f and %f",
			float64(res.Score), float64(res.Confidence))
	}
}

func TestScorePositiveHeadline(t *testing.T) {
	s := NewScorer()
	res := s.Score("Shares rose 10% after strong earnings beat, stock climbed on record profit")
	if res.Label != LabelPositive {
		t.Errorf("Expected positive label, got %s (score %f)", res.Label, float64(res.Score))
	}
	if float64(res.Score) < labelThreshold {
		t.Errorf("Expected score above %f, got %f", labelThreshold, float64(res.Score))
	}
	if float64(res.Confidence) <= 0 || float64(res.Confidence) > 1 {
		t.Errorf("Expected confidence in (0,1], got %f", float64(res.Confidence))
	}
}

func TestScoreNegativeHeadline(t *testing.T) {
	s := NewScorer()
	res := s.Score("Stock fell 8% in a sharp selloff as weak results missed estimates and losses widened")
	if res.Label != LabelNegative {
		t.Errorf("Expected negative label, got %s (score %f)", res.Label, float64(res.Score))
	}
	if float64(res.Score) > -labelThreshold {
		t.Errorf("Expected score below %f, got %f", -labelThreshold, float64(res.Score))
	}
}

func TestScoreStaysBounded(t *testing.T) {
	s := NewScorer()
	texts := []string{
		"Shares rose 10% on strong earnings",
		"Stock plunged 25% in a massive selloff after a huge loss, crashed and collapsed",
		"Record profit, shares surged 15%, rallied on an earnings beat and strong upgrade",
	}
	for _, text := range texts {
		res := s.Score(text)
		if math.Abs(float64(res.Score)) > 1 {
			t.Errorf("Score outside [-1,1] for %q: %f", text, float64(res.Score))
		}
	}

	rec := s.ScoreHeadline(types.Headline{
		Title:       "Shares rose 10% on strong earnings",
		Description: "The stock climbed 12% after a record profit beat",
	})
	if math.Abs(float64(rec.Score)) > 1 {
		t.Errorf("Headline score outside [-1,1]: %f", float64(rec.Score))
	}
}

func TestScoreNeutralText(t *testing.T) {
	s := NewScorer()
	res := s.Score("The company will report quarterly results on Tuesday")
	if res.Label != LabelNeutral {
		t.Errorf("Expected neutral label, got %s (score %f)", res.Label, float64(res.Score))
	}
}

func TestNegationFlipsPolarity(t *testing.T) {
	s := NewScorer()
	plain := s.Score("The outlook is good")
	negated := s.Score("The outlook is not good")
	if float64(negated.Score) >= float64(plain.Score) {
		t.Errorf("Expected negation to lower the score, got %f vs %f",
			float64(negated.Score), float64(plain.Score))
	}
}

func TestScoreHeadlineBlendsTitleAndDescription(t *testing.T) {
	s := NewScorer()
	h := types.Headline{
		Title:       "Shares surged on strong growth",
		Description: "Profit climbed and the company raised guidance",
	}
	rec := s.ScoreHeadline(h)

	title := float64(s.Score(h.Title).Score)
	desc := float64(s.Score(h.Description).Score)
	want := title*0.6 + desc*0.4
	if float64(rec.Score) != want {
		t.Errorf("Expected blended score %f, got %f", want, float64(rec.Score))
	}
	if rec.Title != h.Title {
		t.Error("Expected the headline to be carried on the record")
	}
}

func TestScoreHeadlinesPreservesOrder(t *testing.T) {
	s := NewScorer()
	headlines := []types.Headline{
		{Title: "Stock surged on strong earnings"},
		{Title: "Shares plunged after weak guidance"},
	}
	recs := s.ScoreHeadlines(headlines)
	if len(recs) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recs))
	}
	if recs[0].Title != headlines[0].Title || recs[1].Title != headlines[1].Title {
		t.Error("Expected record order to follow input order")
	}
	if float64(recs[0].Score) <= float64(recs[1].Score) {
		t.Error("Expected the positive headline to outscore the negative one")
	}
}

func TestAggregate(t *testing.T) {
	score, confidence := Aggregate(nil)
	if score != 0 || confidence != 0 {
		t.Errorf("Expected zero signal for no records, got %f and %f", score, confidence)
	}

	recs := []types.SentimentRecord{
		{Score: 0.4},
		{Score: 0.2},
	}
	score, confidence = Aggregate(recs)
	if math.Abs(score-0.3) > 1e-9 {
		t.Errorf("Expected mean score 0.3, got %f", score)
	}
	if math.Abs(confidence-0.3) > 1e-9 {
		t.Errorf("Expected confidence 0.3, got %f", confidence)
	}
}

func TestPercentMoveSign(t *testing.T) {
	s := NewScorer()
	up := s.financeScore("Stock rose 5% today")
	down := s.financeScore("Stock fell 5% today")
	if up <= 0 {
		t.Errorf("Expected positive finance score for a rise, got %f", up)
	}
	if down >= 0 {
		t.Errorf("Expected negative finance score for a fall, got %f", down)
	}
}
