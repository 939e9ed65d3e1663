package app

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"github.com/sachalprvt-cloud/hibikiiii/db/memory"
	"github.com/sachalprvt-cloud/hibikiiii/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return memory.NewStore(memory.Config{
		Clock: func() time.Time {
			at = at.Add(time.Second)
			return at
		},
	})
}

func seedPosts(t *testing.T, store *memory.Store, n int) []int64 {
	t.Helper()
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		id, err := store.CreatePost(context.Background(), &appDb.CreatePost{
			CreatorId: "author",
			Content:   fmt.Sprintf("confession %d", i),
		})
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func collectIds(posts []*model.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, post := range posts {
		ids[i] = post.Id
	}
	return ids
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, DefaultPageSize, ClampPageSize(-3))
	assert.Equal(t, int16(7), ClampPageSize(7))
	assert.Equal(t, MaxPageSize, ClampPageSize(200))
}

func TestNewestCursorWalksWholeFeed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedPosts(t, store, 7)

	var seen []int64
	var cursor PostCursor = &NewestCursor{}
	for {
		page, err := GetFeedPage(ctx, store, nil, cursor, 3)
		require.NoError(t, err)
		if len(page.Posts) == 0 {
			break
		}
		seen = append(seen, collectIds(page.Posts)...)
		require.NotNil(t, page.Cursor)
		cursor = page.Cursor.(*NewestCursor)
	}

	assert.Equal(t, []int64{7, 6, 5, 4, 3, 2, 1}, seen)
}

// posts inserted between fetches must not shift pages already handed out:
// the id anchor guarantees no skip and no repeat of existing posts
func TestNewestCursorStableUnderInserts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedPosts(t, store, 6)

	page, err := GetFeedPage(ctx, store, nil, &NewestCursor{}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 5, 4}, collectIds(page.Posts))

	seedPosts(t, store, 2)

	next, err := GetFeedPage(ctx, store, nil, page.Cursor.(*NewestCursor), 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, collectIds(next.Posts))
}

func TestNewestCursorHasMoreHeuristic(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedPosts(t, store, 3)

	// exactly one full page: HasMore is true even though the feed is done
	page, err := GetFeedPage(ctx, store, nil, &NewestCursor{}, 3)
	require.NoError(t, err)
	assert.True(t, page.HasMore)

	final, err := GetFeedPage(ctx, store, nil, page.Cursor.(*NewestCursor), 3)
	require.NoError(t, err)
	assert.Empty(t, final.Posts)
	assert.False(t, final.HasMore)
	assert.Nil(t, final.Cursor)
}

func TestRankedCursorPagesHotFeed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ids := seedPosts(t, store, 5)

	// give post i a score of i upvotes
	for i, id := range ids {
		for v := 0; v < i; v++ {
			_, err := store.CastVote(ctx, fmt.Sprintf("voter-%d", v), id, model.DirectionUp)
			require.NoError(t, err)
		}
	}

	page, err := GetFeedPage(ctx, store, nil, &RankedCursor{Sort: model.SortHot}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4}, collectIds(page.Posts))
	require.NotNil(t, page.Cursor)

	next, err := GetFeedPage(ctx, store, nil, page.Cursor.(*RankedCursor), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, collectIds(next.Posts))

	last, err := GetFeedPage(ctx, store, nil, next.Cursor.(*RankedCursor), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, collectIds(last.Posts))
	assert.False(t, last.HasMore)
}

func TestFeedExcludesHiddenPosts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ids := seedPosts(t, store, 3)

	_, err := store.SetPostHidden(ctx, ids[1], true)
	require.NoError(t, err)

	page, err := GetFeedPage(ctx, store, nil, &NewestCursor{}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, collectIds(page.Posts))
}

func TestFeedCarriesCallersVote(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ids := seedPosts(t, store, 2)

	_, err := store.CastVote(ctx, "alice", ids[0], model.DirectionDown)
	require.NoError(t, err)

	page, err := GetFeedPage(ctx, store, &model.User{Id: "alice"}, &NewestCursor{}, 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Nil(t, page.Posts[0].UserVote)
	require.NotNil(t, page.Posts[1].UserVote)
	assert.Equal(t, model.DirectionDown, page.Posts[1].UserVote.Direction)
}

func TestTaggedUnionCursorDecode(t *testing.T) {
	var newest TaggedUnionCursor
	require.NoError(t, json.Unmarshal([]byte(`{"sort": "new", "cursor": {"lastId": 17}}`), &newest))
	assert.Equal(t, model.SortNew, newest.Sort)
	require.IsType(t, &NewestCursor{}, newest.PostCursor)
	assert.Equal(t, int64(17), newest.PostCursor.(*NewestCursor).LastId)

	var firstPage TaggedUnionCursor
	require.NoError(t, json.Unmarshal([]byte(`{"sort": "hot"}`), &firstPage))
	require.IsType(t, &RankedCursor{}, firstPage.PostCursor)
	assert.Equal(t, model.SortHot, firstPage.PostCursor.(*RankedCursor).Sort)
	assert.Equal(t, 0, firstPage.PostCursor.(*RankedCursor).Offset)

	// the sort tag wins over a stale sort echoed inside the cursor
	var mismatched TaggedUnionCursor
	require.NoError(t, json.Unmarshal([]byte(`{"sort": "controversial", "cursor": {"sort": "hot", "offset": 4}}`), &mismatched))
	assert.Equal(t, model.SortControversial, mismatched.PostCursor.(*RankedCursor).Sort)
	assert.Equal(t, 4, mismatched.PostCursor.(*RankedCursor).Offset)

	var bad TaggedUnionCursor
	err := json.Unmarshal([]byte(`{"sort": "best"}`), &bad)
	assert.ErrorIs(t, err, ErrUnknownSortMode)
}
