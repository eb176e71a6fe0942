package ranking

import (
	"sort"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// chunkIntents maps each chunk type to the intents it answers.
var chunkIntents = map[model.ChunkType]model.IntentSet{
	model.ChunkTypePayment:    model.NewIntentSet(model.IntentEMI),
	model.ChunkTypeBatch:      model.NewIntentSet(model.IntentPrice, model.IntentDate),
	model.ChunkTypeCurriculum: model.NewIntentSet(model.IntentCurriculum),
	model.ChunkTypeMentors:    model.NewIntentSet(model.IntentInstructor),
	model.ChunkTypePlacements: model.NewIntentSet(model.IntentPlacement),
	model.ChunkTypeReviews:    model.NewIntentSet(model.IntentReview),
	model.ChunkTypeCohort:     model.NewIntentSet(),
}

// intentPrecedence orders intents for questions that carry several of them.
// EMI outranks price, price outranks date.
var intentPrecedence = []model.Intent{
	model.IntentEMI,
	model.IntentPrice,
	model.IntentDate,
	model.IntentCurriculum,
	model.IntentInstructor,
	model.IntentPlacement,
	model.IntentReview,
}

// ChunkIntents returns the intents a chunk type answers.
func ChunkIntents(t model.ChunkType) model.IntentSet {
	out := model.NewIntentSet()
	for i := range chunkIntents[t] {
		out.Add(i)
	}
	return out
}

// Prioritizer reorders retrieved chunks by intent and course continuity.
type Prioritizer struct {
	catalog   *CourseCatalog
	typeBoost float64
}

// NewPrioritizer creates a prioritizer. typeBoost is subtracted from the
// distance of chunks whose type answers one of the question's intents, once
// per precedence step the answered intent is ahead of the question's
// lowest-ranked intent.
func NewPrioritizer(catalog *CourseCatalog, typeBoost float64) *Prioritizer {
	if catalog == nil {
		catalog = NewCourseCatalog(DefaultCourses())
	}
	if typeBoost < 0 {
		typeBoost = model.DefaultQueryConfig().TypeBoost
	}
	return &Prioritizer{catalog: catalog, typeBoost: typeBoost}
}

// Catalog returns the course catalog used for continuity.
func (p *Prioritizer) Catalog() *CourseCatalog {
	return p.catalog
}

// Target returns the course the answer should stay on: the course named in
// the question, else lastCourse. "" means no restriction.
func (p *Prioritizer) Target(question string, lastCourse string) string {
	if named := p.catalog.Match(question); named != "" {
		return named
	}
	return lastCourse
}

// Prioritize returns the candidates restricted to the target course and
// sorted by (priority, distance, retrieval index) ascending. The course
// restriction is skipped when it would remove every candidate. The input
// slice is not modified and equal inputs always give equal output.
func (p *Prioritizer) Prioritize(candidates []model.ScoredChunk, intents model.IntentSet, question string, lastCourse string) []model.ScoredChunk {
	out := make([]model.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		if c.Chunk != nil {
			out = append(out, c)
		}
	}

	if target := p.Target(question, lastCourse); target != "" {
		kept := make([]model.ScoredChunk, 0, len(out))
		for _, c := range out {
			if p.catalog.SameCourse(c.Chunk.CohortName, target) {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			out = kept
		}
	}

	ranked := rankIntents(intents)
	for i := range out {
		out[i].Priority = out[i].Distance - p.typeBoost*boostSteps(ranked, chunkIntents[out[i].Chunk.Type])
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.Index < b.Index
	})
	return out
}

// rankIntents returns the question's intents in precedence order.
func rankIntents(intents model.IntentSet) []model.Intent {
	ranked := make([]model.Intent, 0, len(intents))
	for _, i := range intentPrecedence {
		if intents.Has(i) {
			ranked = append(ranked, i)
		}
	}
	return ranked
}

// boostSteps is 0 when answers covers none of ranked, and len(ranked) minus
// the position of the best covered intent otherwise.
func boostSteps(ranked []model.Intent, answers model.IntentSet) float64 {
	for pos, i := range ranked {
		if answers.Has(i) {
			return float64(len(ranked) - pos)
		}
	}
	return 0
}
