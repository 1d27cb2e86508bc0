package service

import (
	"testing"

	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"

	"github.com/stretchr/testify/require"
)

func TestCommitQuantity(t *testing.T) {
	total, satisfied, err := CommitQuantity(100, 0, 60)
	require.NoError(t, err)
	require.Equal(t, 60, total)
	require.False(t, satisfied)

	total, satisfied, err = CommitQuantity(100, 60, 40)
	require.NoError(t, err)
	require.Equal(t, 100, total)
	require.True(t, satisfied)
}

func TestCommitQuantityRejectsOvershoot(t *testing.T) {
	_, _, err := CommitQuantity(100, 60, 41)
	require.ErrorIs(t, err, apperror.ErrOverCommit)

	// A satisfied request accepts nothing further
	_, _, err = CommitQuantity(100, 100, 1)
	require.ErrorIs(t, err, apperror.ErrOverCommit)
}

func TestCommitQuantityRejectsNonPositiveAmount(t *testing.T) {
	_, _, err := CommitQuantity(100, 0, 0)
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, _, err = CommitQuantity(100, 0, -5)
	require.ErrorIs(t, err, apperror.ErrValidation)
}
