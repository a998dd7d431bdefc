package recommend

import (
	"context"
	"sort"
)

// WeakTopic is an attempted concept scoring below WeakThreshold.
type WeakTopic struct {
	ConceptID     string  `json:"concept_id"`
	ConceptName   string  `json:"concept_name"`
	MasteryScore  float64 `json:"mastery_score"`
	Accuracy      float64 `json:"accuracy"`
	ExposureCount int     `json:"exposure_count"`
}

// WeakTopics lists the student's weak concepts in the course, weakest
// first. Concepts never attempted are not weak.
func (s *Service) WeakTopics(ctx context.Context, studentID, courseID string) ([]WeakTopic, error) {
	st, err := s.load(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	out := []WeakTopic{}
	for _, c := range st.graph.Concepts() {
		ms, ok := st.scores[c.ID]
		if !ok || ms.Score >= WeakThreshold {
			continue
		}
		out = append(out, WeakTopic{
			ConceptID:     c.ID,
			ConceptName:   c.Name,
			MasteryScore:  round3(ms.Score),
			Accuracy:      round3(ms.Accuracy),
			ExposureCount: ms.ExposureCount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MasteryScore < out[j].MasteryScore })
	return out, nil
}
