package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"toorak_vpn/internal/model"
)

func TestMemoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	rec, err := repo.GetByMessageID(ctx, "m1")
	require.NoError(t, err)
	require.Nil(t, rec)

	in := &model.ProtectedRecord{MessageID: "m1", Tier: model.TierJustice}
	require.NoError(t, repo.Create(ctx, in))
	require.Error(t, repo.Create(ctx, in), "duplicate message id")

	in.Tier = model.TierStandard // stored copy must not alias the caller's record
	rec, err = repo.GetByMessageID(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, model.TierJustice, rec.Tier)
}
