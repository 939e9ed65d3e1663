package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewStore(Config{
		Clock: func() time.Time {
			at = at.Add(time.Second)
			return at
		},
	})
}

func mustCreatePost(t *testing.T, store *Store, creatorId string) int64 {
	t.Helper()
	id, err := store.CreatePost(context.Background(), &appDb.CreatePost{
		CreatorId: creatorId,
		Content:   "some confession",
	})
	require.NoError(t, err)
	return id
}

func tallies(t *testing.T, store *Store, postId int64) (int64, int64) {
	t.Helper()
	post, err := store.GetPostById(context.Background(), postId, &appDb.PostQueryOpts{IncludeHidden: true})
	require.NoError(t, err)
	require.NotNil(t, post)
	return post.Upvotes, post.Downvotes
}

func TestCastVoteLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	postId := mustCreatePost(t, store, "author")

	outcome, err := store.CastVote(ctx, "alice", postId, model.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, model.CastRecorded, outcome)
	up, down := tallies(t, store, postId)
	assert.Equal(t, int64(1), up)
	assert.Equal(t, int64(0), down)

	outcome, err = store.CastVote(ctx, "alice", postId, model.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, model.CastChanged, outcome)
	up, down = tallies(t, store, postId)
	assert.Equal(t, int64(0), up)
	assert.Equal(t, int64(1), down)

	outcome, err = store.CastVote(ctx, "alice", postId, model.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, model.CastCancelled, outcome)
	up, down = tallies(t, store, postId)
	assert.Equal(t, int64(0), up)
	assert.Equal(t, int64(0), down)
}

func TestCastVoteReflectedInUserVote(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	postId := mustCreatePost(t, store, "author")

	_, err := store.CastVote(ctx, "alice", postId, model.DirectionUp)
	require.NoError(t, err)

	post, err := store.GetPostById(ctx, postId, &appDb.PostQueryOpts{VoteHistoryOf: "alice"})
	require.NoError(t, err)
	require.NotNil(t, post.UserVote)
	assert.Equal(t, model.DirectionUp, post.UserVote.Direction)

	post, err = store.GetPostById(ctx, postId, &appDb.PostQueryOpts{VoteHistoryOf: "bob"})
	require.NoError(t, err)
	assert.Nil(t, post.UserVote)
}

func TestCastVoteOnMissingOrHiddenPost(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.CastVote(ctx, "alice", 42, model.DirectionUp)
	assert.ErrorIs(t, err, appDb.ErrPostNotFound)

	postId := mustCreatePost(t, store, "author")
	_, err = store.SetPostHidden(ctx, postId, true)
	require.NoError(t, err)
	_, err = store.CastVote(ctx, "alice", postId, model.DirectionUp)
	assert.ErrorIs(t, err, appDb.ErrPostNotFound)
}

// many voters hammering the same post concurrently must leave the tallies
// equal to the surviving vote rows
func TestCastVoteConcurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	postId := mustCreatePost(t, store, "author")

	const voters = 32
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			voter := fmt.Sprintf("voter-%d", n)
			_, err := store.CastVote(ctx, voter, postId, model.DirectionUp)
			assert.NoError(t, err)
			if n%2 == 0 {
				// half the voters switch, ending on DOWN
				_, err = store.CastVote(ctx, voter, postId, model.DirectionDown)
				assert.NoError(t, err)
			}
			if n%4 == 0 {
				// a quarter cancel that DOWN again, ending with no vote
				_, err = store.CastVote(ctx, voter, postId, model.DirectionDown)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	up, down := tallies(t, store, postId)
	assert.Equal(t, int64(16), up)
	assert.Equal(t, int64(8), down)
}

func TestCreateReportThresholdHidesPost(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	postId := mustCreatePost(t, store, "author")

	for i := 0; i < 2; i++ {
		_, err := store.CreateReport(ctx, fmt.Sprintf("reporter-%d", i), &appDb.CreateReport{PostId: postId})
		require.NoError(t, err)
		post, err := store.GetPostById(ctx, postId, &appDb.PostQueryOpts{})
		require.NoError(t, err)
		require.NotNil(t, post, "post must stay visible below the threshold")
	}

	_, err := store.CreateReport(ctx, "reporter-2", &appDb.CreateReport{PostId: postId})
	require.NoError(t, err)

	post, err := store.GetPostById(ctx, postId, &appDb.PostQueryOpts{})
	require.NoError(t, err)
	assert.Nil(t, post, "third report must hide the post")

	// reporting past the threshold still works and leaves the post hidden
	_, err = store.CreateReport(ctx, "reporter-3", &appDb.CreateReport{PostId: postId})
	require.NoError(t, err)
	post, err = store.GetPostById(ctx, postId, &appDb.PostQueryOpts{IncludeHidden: true})
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, model.VisibilityHidden, post.Visibility)
}

func TestCreateReportDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	postId := mustCreatePost(t, store, "author")

	_, err := store.CreateReport(ctx, "alice", &appDb.CreateReport{PostId: postId})
	require.NoError(t, err)
	_, err = store.CreateReport(ctx, "alice", &appDb.CreateReport{PostId: postId})
	assert.ErrorIs(t, err, appDb.ErrAlreadyReported)
}

func TestSetPostHidden(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	postId := mustCreatePost(t, store, "author")

	rows, err := store.SetPostHidden(ctx, postId, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// already hidden, nothing to change
	rows, err = store.SetPostHidden(ctx, postId, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = store.SetPostHidden(ctx, postId, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	_, err = store.SetPostHidden(ctx, 42, true)
	assert.ErrorIs(t, err, appDb.ErrPostNotFound)

	_, err = store.DeletePost(ctx, postId)
	require.NoError(t, err)
	_, err = store.SetPostHidden(ctx, postId, false)
	assert.ErrorIs(t, err, appDb.ErrInvalidTransition)
}

func TestDeletePostPurgesEverything(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	postId := mustCreatePost(t, store, "author")

	_, err := store.CastVote(ctx, "alice", postId, model.DirectionUp)
	require.NoError(t, err)
	_, err = store.CreateReport(ctx, "bob", &appDb.CreateReport{PostId: postId})
	require.NoError(t, err)
	_, err = store.CreateComment(ctx, &appDb.CreateComment{PostId: postId, CreatorId: "carol", Content: "hi"})
	require.NoError(t, err)

	rows, err := store.DeletePost(ctx, postId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	post, err := store.GetPostById(ctx, postId, &appDb.PostQueryOpts{IncludeHidden: true})
	require.NoError(t, err)
	assert.Nil(t, post, "deleted posts are invisible even to admin reads")

	reports, err := store.GetRecentReports(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, reports)

	_, err = store.GetComments(ctx, postId, 0, 10)
	assert.ErrorIs(t, err, appDb.ErrPostNotFound)

	// idempotent
	rows, err = store.DeletePost(ctx, postId)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	_, err = store.CastVote(ctx, "alice", postId, model.DirectionUp)
	assert.ErrorIs(t, err, appDb.ErrPostNotFound)
}

// an empty comment page must mean a real post with no comments; reads and
// writes against a missing or hidden post fail the same way
func TestGetCommentsOnMissingOrHiddenPost(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetComments(ctx, 42, 0, 10)
	assert.ErrorIs(t, err, appDb.ErrPostNotFound)

	postId := mustCreatePost(t, store, "author")
	comments, err := store.GetComments(ctx, postId, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = store.SetPostHidden(ctx, postId, true)
	require.NoError(t, err)
	_, err = store.GetComments(ctx, postId, 0, 10)
	assert.ErrorIs(t, err, appDb.ErrPostNotFound)
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	postId := mustCreatePost(t, store, "author")
	commentId, err := store.CreateComment(ctx, &appDb.CreateComment{
		PostId:    postId,
		CreatorId: "alice",
		Content:   "une réponse",
	})
	require.NoError(t, err)

	rows, err := store.DeleteComment(ctx, commentId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	comments, err := store.GetComments(ctx, postId, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// idempotent
	rows, err = store.DeleteComment(ctx, commentId)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestCreatePostAwardsKarma(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateUser(ctx, &model.User{Id: "author", DisplayName: "Anon"}))

	mustCreatePost(t, store, "author")
	mustCreatePost(t, store, "author")

	user, err := store.GetUser(ctx, "author")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(2*appDb.KarmaPerPost), user.Karma)
}

func TestSetUserBanned(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateUser(ctx, &model.User{Id: "alice"}))

	rows, err := store.SetUserBanned(ctx, "alice", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = store.SetUserBanned(ctx, "alice", true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	_, err = store.SetUserBanned(ctx, "nobody", true)
	assert.ErrorIs(t, err, appDb.ErrUserNotFound)
}

func TestGetLeaderboardExcludesBanned(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateUser(ctx, &model.User{Id: "alice", Karma: 30}))
	require.NoError(t, store.CreateUser(ctx, &model.User{Id: "bob", Karma: 50}))
	require.NoError(t, store.CreateUser(ctx, &model.User{Id: "mallory", Karma: 90, IsBanned: true}))

	users, err := store.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Id)
	assert.Equal(t, "alice", users[1].Id)
}
