package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommendQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   RecommendQuery
		wantErr bool
	}{
		{name: "valid", query: RecommendQuery{UserID: 19}},
		{name: "valid with top_k", query: RecommendQuery{UserID: 19, TopK: 50, Debug: true}},
		{name: "missing user", query: RecommendQuery{}, wantErr: true},
		{name: "negative user", query: RecommendQuery{UserID: -1}, wantErr: true},
		{name: "negative top_k", query: RecommendQuery{UserID: 19, TopK: -1}, wantErr: true},
		{name: "top_k too large", query: RecommendQuery{UserID: 19, TopK: 51}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJobPosting_Labels(t *testing.T) {
	job := JobPosting{
		Tags:           []string{"finance", "office"},
		DisabilityTags: []string{"Visual Impairment"},
	}
	assert.Equal(t, "finance, office", job.TagsLabel())
	assert.Equal(t, "Visual Impairment", job.DisabilityTagsLabel())
	assert.Empty(t, (&JobPosting{}).TagsLabel())
}
