package chat

import (
	"context"
	"testing"

	"github.com/yungbote/pathforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pathforge-backend/internal/domain/chat"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
)

func TestMessagesAppendInSeqOrder(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	msgs := NewMessageRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, db, `{}`)
	c := testutil.SeedChat(t, ctx, db, user.ID)
	dbc := dbctx.Context{Ctx: ctx}

	seq, err := msgs.NextSeq(dbc, c.ID)
	if err != nil || seq != 0 {
		t.Fatalf("NextSeq on empty chat: %d %v", seq, err)
	}
	in, _ := types.NewMessage(c.ID, 0, types.RoleUser, types.Text("hi"))
	out, _ := types.NewMessage(c.ID, 1, types.RoleAssistant, types.Structured{"ok": true})
	if err := msgs.Append(dbc, []*types.Message{in, out}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	seq, err = msgs.NextSeq(dbc, c.ID)
	if err != nil || seq != 2 {
		t.Fatalf("NextSeq: %d %v", seq, err)
	}
	got, err := msgs.ListByChat(dbc, c.ID)
	if err != nil {
		t.Fatalf("ListByChat: %v", err)
	}
	if len(got) != 2 || got[0].Role != types.RoleUser || got[1].ContentType != types.KindStructured {
		t.Fatalf("unexpected history: %+v", got)
	}
}
