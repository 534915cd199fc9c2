package service

import (
	"sort"

	"karmafeed/internal/domain/feed/model"
)

// BuildTree 将帖子的扁平评论集合组装为森林
// 父评论不在集合中或挂载后会成环的节点提升为顶层，保证每条评论恰好出现一次；
// 同层节点按 created_at、id 升序
func BuildTree(comments []model.Comment, likes map[uint64]int64, liked map[uint64]bool) []*model.CommentNode {
	ordered := make([]model.Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	nodes := make(map[uint64]*model.CommentNode, len(ordered))
	parents := make(map[uint64]*uint64, len(ordered))
	list := make([]*model.CommentNode, 0, len(ordered))
	for i := range ordered {
		c := &ordered[i]
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		node := newNode(c, likes[c.ID], liked[c.ID])
		nodes[c.ID] = node
		parents[c.ID] = c.ParentID
		list = append(list, node)
	}

	// promoted 记录被提升为顶层的节点，向上查找时视为根
	promoted := make(map[uint64]bool)
	parentOf := func(id uint64) (uint64, bool) {
		if promoted[id] {
			return 0, false
		}
		p := parents[id]
		if p == nil {
			return 0, false
		}
		if _, ok := nodes[*p]; !ok {
			return 0, false
		}
		return *p, true
	}

	roots := make([]*model.CommentNode, 0)
	for _, node := range list {
		parentID, ok := parentOf(node.ID)
		if !ok || closesCycle(node.ID, parentID, parentOf) {
			promoted[node.ID] = true
			roots = append(roots, node)
			continue
		}
		parent := nodes[parentID]
		parent.Replies = append(parent.Replies, node)
	}
	return roots
}

// closesCycle 从 parent 向上查找，遇到 child 或已访问过的节点即认为成环
func closesCycle(child, parent uint64, parentOf func(uint64) (uint64, bool)) bool {
	seen := make(map[uint64]bool)
	for cur := parent; ; {
		if cur == child || seen[cur] {
			return true
		}
		seen[cur] = true
		next, ok := parentOf(cur)
		if !ok {
			return false
		}
		cur = next
	}
}

// CountAll 统计森林中的评论总数（含所有层级的回复）
func CountAll(forest []*model.CommentNode) int {
	total := 0
	for _, node := range forest {
		total += 1 + CountAll(node.Replies)
	}
	return total
}

func newNode(c *model.Comment, likes int64, liked bool) *model.CommentNode {
	return &model.CommentNode{
		ID:        c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Author:    c.Author,
		Content:   c.Content,
		Depth:     c.Depth,
		CreatedAt: c.CreatedAt,
		Likes:     likes,
		IsLiked:   liked,
		Replies:   make([]*model.CommentNode, 0),
	}
}
