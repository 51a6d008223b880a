package atproto

import (
	"strings"
	"time"

	appbsky "github.com/bluesky-social/indigo/api/bsky"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/model"
)

// postID turns an at:// record URI into a message id.
func postID(uri string) string {
	return strings.TrimPrefix(uri, "at://")
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func author(a *appbsky.ActorDefs_ProfileViewBasic) *model.Account {
	if a == nil || a.Handle == "" {
		return nil
	}
	return &model.Account{Handle: a.Handle}
}

// PostMessage maps a post view to a Message. The reply-parent, if any, is a
// stub carrying only its id.
func PostMessage(pv *appbsky.FeedDefs_PostView) (*model.Message, error) {
	if pv == nil || pv.Uri == "" {
		return nil, errors.NewInvalidRequestError("post view without uri")
	}
	msg := &model.Message{
		ID:        postID(pv.Uri),
		Author:    author(pv.Author),
		CreatedAt: parseTime(pv.IndexedAt),
	}
	if pv.Record == nil {
		return msg, nil
	}
	post, ok := pv.Record.Val.(*appbsky.FeedPost)
	if !ok {
		return nil, errors.Newf("record of %s is %T, not a post", pv.Uri, pv.Record.Val)
	}
	msg.Text = post.Text
	if t := parseTime(post.CreatedAt); !t.IsZero() {
		msg.CreatedAt = t
	}
	if post.Reply != nil && post.Reply.Parent != nil && post.Reply.Parent.Uri != "" {
		msg.InReplyTo = &model.Message{ID: postID(post.Reply.Parent.Uri)}
	}
	return msg, nil
}

// FeedMessage maps a timeline entry. A repost becomes a message authored by
// the reposter whose retweet-source is the original post; a reply whose
// parent is included in the entry gets that parent in full.
func FeedMessage(item *appbsky.FeedDefs_FeedViewPost) (*model.Message, error) {
	if item == nil {
		return nil, errors.NewInvalidRequestError("nil feed item")
	}
	msg, err := PostMessage(item.Post)
	if err != nil {
		return nil, err
	}

	if msg.InReplyTo != nil && item.Reply != nil && item.Reply.Parent != nil {
		if pv := item.Reply.Parent.FeedDefs_PostView; pv != nil && postID(pv.Uri) == msg.InReplyTo.ID {
			if parent, err := PostMessage(pv); err == nil {
				msg.InReplyTo = parent
			}
		}
	}

	if item.Reason != nil && item.Reason.FeedDefs_ReasonRepost != nil {
		repost := item.Reason.FeedDefs_ReasonRepost
		by := author(repost.By)
		if by == nil {
			return nil, errors.Newf("repost of %s without reposter", msg.ID)
		}
		return &model.Message{
			ID:        msg.ID + "/repost/" + repost.By.Did,
			Author:    by,
			CreatedAt: parseTime(repost.IndexedAt),
			RetweetOf: msg,
		}, nil
	}
	return msg, nil
}
