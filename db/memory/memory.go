// Package memory implements db.Database on in-process maps guarded by a
// single mutex, giving the same linearizable per-row semantics the MySQL
// store gets from row locks. It backs the package tests; nothing in the
// server wires it.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
)

type Config struct {
	ReportThreshold int64
	// Clock overrides time.Now for deterministic ordering tests
	Clock func() time.Time
}

type voteKey struct {
	postId  int64
	voterId string
}

type reportKey struct {
	postId    int64
	creatorId string
}

type postRecord struct {
	id         int64
	creatorId  string
	content    string
	upvotes    int64
	downvotes  int64
	visibility model.Visibility
	createdAt  time.Time
	updatedAt  time.Time
}

type commentRecord struct {
	id        int64
	postId    int64
	creatorId string
	content   string
	createdAt time.Time
}

type Store struct {
	mu            sync.Mutex
	threshold     int64
	clock         func() time.Time
	nextPostId    int64
	nextCommentId int64
	nextReportId  int64
	posts         map[int64]*postRecord
	votes         map[voteKey]model.Direction
	reports       map[reportKey]*model.Report
	comments      map[int64]*commentRecord
	users         map[string]*model.User
}

func NewStore(cfg Config) *Store {
	threshold := cfg.ReportThreshold
	if threshold == 0 {
		threshold = 3
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		threshold: threshold,
		clock:     clock,
		posts:     make(map[int64]*postRecord),
		votes:     make(map[voteKey]model.Direction),
		reports:   make(map[reportKey]*model.Report),
		comments:  make(map[int64]*commentRecord),
		users:     make(map[string]*model.User),
	}
}

func (s *Store) GetSQLDB() *sql.DB { return nil }
func (s *Store) Close() error      { return nil }

func (s *Store) CreatePost(ctx context.Context, req *appDb.CreatePost) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPostId++
	now := s.clock()
	s.posts[s.nextPostId] = &postRecord{
		id:         s.nextPostId,
		creatorId:  req.CreatorId,
		content:    req.Content,
		visibility: model.VisibilityVisible,
		createdAt:  now,
		updatedAt:  now,
	}
	if user, ok := s.users[req.CreatorId]; ok {
		user.Karma += appDb.KarmaPerPost
	}
	return s.nextPostId, nil
}

func (s *Store) GetPostById(ctx context.Context, id int64, opts *appDb.PostQueryOpts) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.posts[id]
	if !ok || record.visibility == model.VisibilityDeleted {
		return nil, nil
	}
	if record.visibility == model.VisibilityHidden && !opts.IncludeHidden {
		return nil, nil
	}
	return s.buildPost(record, opts.VoteHistoryOf), nil
}

func (s *Store) GetFeedPosts(ctx context.Context, query *appDb.FeedQuery) ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*postRecord
	for _, record := range s.posts {
		if record.visibility != model.VisibilityVisible {
			continue
		}
		if query.Sort == model.SortNew && query.LastId > 0 && record.id >= query.LastId {
			continue
		}
		records = append(records, record)
	}
	posts := make([]*model.Post, len(records))
	for i, record := range records {
		posts[i] = s.buildPost(record, query.VoteHistoryOf)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return model.Less(query.Sort, posts[i], posts[j])
	})

	offset := 0
	if query.Sort != model.SortNew {
		offset = query.Offset
	}
	if offset >= len(posts) {
		return []*model.Post{}, nil
	}
	posts = posts[offset:]
	if int(query.Limit) < len(posts) {
		posts = posts[:query.Limit]
	}
	return posts, nil
}

func (s *Store) SetPostHidden(ctx context.Context, id int64, hidden bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.posts[id]
	if !ok {
		return 0, appDb.ErrPostNotFound
	}
	next, changed, legal := model.ResolveAdminVisibility(record.visibility, hidden)
	if !legal {
		return 0, appDb.ErrInvalidTransition
	}
	if !changed {
		return 0, nil
	}
	record.visibility = next
	record.updatedAt = s.clock()
	return 1, nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.posts[id]
	if !ok || record.visibility == model.VisibilityDeleted {
		return 0, nil
	}
	for commentId, comment := range s.comments {
		if comment.postId == id {
			delete(s.comments, commentId)
		}
	}
	for key := range s.reports {
		if key.postId == id {
			delete(s.reports, key)
		}
	}
	for key := range s.votes {
		if key.postId == id {
			delete(s.votes, key)
		}
	}
	record.visibility = model.VisibilityDeleted
	record.content = ""
	record.upvotes = 0
	record.downvotes = 0
	record.updatedAt = s.clock()
	return 1, nil
}

func (s *Store) CastVote(ctx context.Context, voterId string, postId int64, direction model.Direction) (model.CastOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.posts[postId]
	if !ok || record.visibility != model.VisibilityVisible {
		return "", appDb.ErrPostNotFound
	}

	key := voteKey{postId: postId, voterId: voterId}
	var previous *model.Direction
	if existing, voted := s.votes[key]; voted {
		previous = &existing
	}
	outcome, delta := model.ResolveCast(previous, direction)
	switch outcome {
	case model.CastRecorded, model.CastChanged:
		s.votes[key] = direction
	case model.CastCancelled:
		delete(s.votes, key)
	}
	record.upvotes += delta.Up
	record.downvotes += delta.Down
	return outcome, nil
}

func (s *Store) CreateReport(ctx context.Context, creatorId string, req *appDb.CreateReport) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.posts[req.PostId]
	if !ok || record.visibility == model.VisibilityDeleted {
		return 0, appDb.ErrPostNotFound
	}
	key := reportKey{postId: req.PostId, creatorId: creatorId}
	if _, reported := s.reports[key]; reported {
		return 0, appDb.ErrAlreadyReported
	}
	s.nextReportId++
	s.reports[key] = &model.Report{
		Id:        s.nextReportId,
		PostId:    req.PostId,
		CreatorId: creatorId,
		Reason:    req.Reason,
		CreatedAt: s.clock(),
	}

	var count int64
	for k := range s.reports {
		if k.postId == req.PostId {
			count++
		}
	}
	if count >= s.threshold && record.visibility == model.VisibilityVisible {
		record.visibility = model.VisibilityHidden
	}
	return s.nextReportId, nil
}

func (s *Store) GetRecentReports(ctx context.Context, limit int) ([]*model.ReportWithPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reports []*model.ReportWithPost
	for key, report := range s.reports {
		record := s.posts[key.postId]
		reports = append(reports, &model.ReportWithPost{
			Report:         *report,
			PostContent:    record.content,
			PostVisibility: record.visibility,
		})
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Report.Id > reports[j].Report.Id
	})
	if limit < len(reports) {
		reports = reports[:limit]
	}
	return reports, nil
}

func (s *Store) CreateComment(ctx context.Context, req *appDb.CreateComment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.posts[req.PostId]
	if !ok || record.visibility != model.VisibilityVisible {
		return 0, appDb.ErrPostNotFound
	}
	s.nextCommentId++
	s.comments[s.nextCommentId] = &commentRecord{
		id:        s.nextCommentId,
		postId:    req.PostId,
		creatorId: req.CreatorId,
		content:   req.Content,
		createdAt: s.clock(),
	}
	return s.nextCommentId, nil
}

func (s *Store) GetComments(ctx context.Context, postId int64, lastId int64, limit int16) ([]*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.posts[postId]
	if !ok || record.visibility != model.VisibilityVisible {
		return nil, appDb.ErrPostNotFound
	}
	var comments []*model.Comment
	for _, comment := range s.comments {
		if comment.postId != postId {
			continue
		}
		if lastId > 0 && comment.id >= lastId {
			continue
		}
		comments = append(comments, &model.Comment{
			Id:        comment.id,
			PostId:    comment.postId,
			Creator:   s.displayableUser(comment.creatorId),
			Content:   comment.content,
			CreatedAt: comment.createdAt,
		})
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].Id > comments[j].Id
	})
	if int(limit) < len(comments) {
		comments = comments[:limit]
	}
	return comments, nil
}

func (s *Store) DeleteComment(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return 0, nil
	}
	delete(s.comments, id)
	return 1, nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *user
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.clock()
	}
	s.users[user.Id] = &stored
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *Store) AddKarma(ctx context.Context, id string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.Karma += delta
	}
	return nil
}

func (s *Store) SetUserBanned(ctx context.Context, id string, banned bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return 0, appDb.ErrUserNotFound
	}
	if user.IsBanned == banned {
		return 0, nil
	}
	user.IsBanned = banned
	return 1, nil
}

func (s *Store) GetLeaderboard(ctx context.Context, limit int) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []*model.User
	for _, user := range s.users {
		if user.IsBanned {
			continue
		}
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Karma != users[j].Karma {
			return users[i].Karma > users[j].Karma
		}
		return users[i].Id < users[j].Id
	})
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (s *Store) GetRecentUsers(ctx context.Context, limit int) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []*model.User
	for _, user := range s.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].Id < users[j].Id
	})
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (s *Store) buildPost(record *postRecord, voteHistoryOf string) *model.Post {
	var vote *model.Vote
	if voteHistoryOf != "" {
		if direction, ok := s.votes[voteKey{postId: record.id, voterId: voteHistoryOf}]; ok {
			vote = &model.Vote{Direction: direction}
		}
	}
	var commentCount int64
	for _, comment := range s.comments {
		if comment.postId == record.id {
			commentCount++
		}
	}
	return &model.Post{
		Id:           record.id,
		Creator:      s.displayableUser(record.creatorId),
		Content:      record.content,
		Upvotes:      record.upvotes,
		Downvotes:    record.downvotes,
		Visibility:   record.visibility,
		UserVote:     vote,
		CommentCount: commentCount,
		CreatedAt:    record.createdAt,
		UpdatedAt:    record.updatedAt,
	}
}

func (s *Store) displayableUser(id string) *model.DisplayableUser {
	displayName := ""
	if user, ok := s.users[id]; ok {
		displayName = user.DisplayName
	}
	return &model.DisplayableUser{Id: id, DisplayName: displayName}
}
