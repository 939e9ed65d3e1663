package app

import (
	"encoding/json"
	"errors"

	"github.com/sachalprvt-cloud/hibikiiii/model"
)

var ErrUnknownSortMode = errors.New("unknown sort mode")

// TaggedUnionCursor decodes a feed request of the shape
// {"sort": "...", "cursor": {...}} into the cursor type for that sort.
// An absent cursor means the first page.
type TaggedUnionCursor struct {
	PostCursor
	Sort model.SortMode
}

func (tuc *TaggedUnionCursor) UnmarshalJSON(data []byte) error {
	if tuc == nil {
		return nil
	}
	var rawJsonWithSort struct {
		Sort string           `json:"sort"`
		Raw  *json.RawMessage `json:"cursor"`
	}
	if err := json.Unmarshal(data, &rawJsonWithSort); err != nil {
		return err
	}

	sort, err := model.ParseSortMode(rawJsonWithSort.Sort)
	if err != nil {
		return ErrUnknownSortMode
	}
	tuc.Sort = sort

	var cursorRef PostCursor
	switch sort {
	case model.SortNew:
		cursorRef = &NewestCursor{}
	case model.SortHot, model.SortControversial:
		cursorRef = &RankedCursor{Sort: sort}
	default:
		return ErrUnknownSortMode
	}

	if rawJsonWithSort.Raw != nil {
		if err := json.Unmarshal(*rawJsonWithSort.Raw, cursorRef); err != nil {
			return err
		}
		// the sort tag wins over whatever the client echoed back inside
		// the cursor payload
		if ranked, isRanked := cursorRef.(*RankedCursor); isRanked {
			ranked.Sort = sort
		}
	}

	tuc.PostCursor = cursorRef
	return nil
}

func (tuc *TaggedUnionCursor) MarshalJSON() ([]byte, error) {
	panic("should not be marshalled")
}
