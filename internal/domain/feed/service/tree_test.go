package service

import (
	"testing"
	"time"

	"karmafeed/internal/domain/feed/model"
	baseModel "karmafeed/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func comment(id uint64, parent *uint64, at time.Duration) model.Comment {
	return model.Comment{
		BaseModel: baseModel.BaseModel{ID: id, CreatedAt: t0.Add(at)},
		PostID:    1,
		ParentID:  parent,
		Author:    "u",
		Content:   "c",
	}
}

func ptr(v uint64) *uint64 { return &v }

func TestBuildTreeOrdering(t *testing.T) {
	comments := []model.Comment{
		comment(3, ptr(1), 3*time.Second),
		comment(2, nil, 2*time.Second),
		comment(1, nil, time.Second),
		comment(4, ptr(1), 3*time.Second), // 与 3 同一时刻，按 id 排序
		comment(5, ptr(3), 4*time.Second),
	}

	forest := BuildTree(comments, map[uint64]int64{3: 2}, map[uint64]bool{5: true})

	require.Len(t, forest, 2)
	assert.Equal(t, uint64(1), forest[0].ID)
	assert.Equal(t, uint64(2), forest[1].ID)

	replies := forest[0].Replies
	require.Len(t, replies, 2)
	assert.Equal(t, uint64(3), replies[0].ID)
	assert.Equal(t, uint64(4), replies[1].ID)
	assert.Equal(t, int64(2), replies[0].Likes)

	require.Len(t, replies[0].Replies, 1)
	assert.True(t, replies[0].Replies[0].IsLiked)
	assert.NotNil(t, forest[1].Replies)
	assert.Equal(t, 5, CountAll(forest))
}

func TestBuildTreeGuards(t *testing.T) {
	tests := []struct {
		name     string
		comments []model.Comment
		roots    int
	}{
		{
			name:     "missing parent is promoted",
			comments: []model.Comment{comment(1, nil, 0), comment(2, ptr(99), time.Second)},
			roots:    2,
		},
		{
			name:     "two node cycle",
			comments: []model.Comment{comment(1, ptr(2), 0), comment(2, ptr(1), time.Second)},
			roots:    1,
		},
		{
			name:     "self parent",
			comments: []model.Comment{comment(1, ptr(1), 0)},
			roots:    1,
		},
		{
			name:     "duplicate ids",
			comments: []model.Comment{comment(1, nil, 0), comment(1, nil, 0), comment(2, ptr(1), time.Second)},
			roots:    1,
		},
		{
			name:     "empty",
			comments: nil,
			roots:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := BuildTree(tt.comments, nil, nil)
			assert.Len(t, forest, tt.roots)

			seen := make(map[uint64]int)
			var walk func(nodes []*model.CommentNode)
			walk = func(nodes []*model.CommentNode) {
				for _, n := range nodes {
					seen[n.ID]++
					walk(n.Replies)
				}
			}
			walk(forest)

			unique := make(map[uint64]bool)
			for _, c := range tt.comments {
				unique[c.ID] = true
			}
			assert.Len(t, seen, len(unique))
			for id, n := range seen {
				assert.Equal(t, 1, n, "comment %d", id)
			}
			assert.Equal(t, len(unique), CountAll(forest))
		})
	}
}
