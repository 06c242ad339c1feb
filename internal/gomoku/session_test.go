package gomoku

import (
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveSession(t *testing.T) *Session {
	t.Helper()

	session := NewSession("s1", "room-1")

	first, err := session.Join()
	require.NoError(t, err)
	require.Equal(t, entity.SlotFirst, first)

	second, err := session.Join()
	require.NoError(t, err)
	require.Equal(t, entity.SlotSecond, second)

	return session
}

func at(row, col int) entity.Coordinate {
	return entity.Coordinate{Row: row, Col: col}
}

func TestNewSession(t *testing.T) {
	// When: a session is created
	session := NewSession("s1", "room-1")

	// Then: it waits for players with First to move
	state := session.Snapshot()
	assert.Equal(t, StatusWaiting, state.Status)
	assert.Equal(t, entity.SlotFirst, state.CurrentTurn)
	assert.Equal(t, 0, state.PlayerCount)
	assert.Empty(t, state.Players)
	assert.Nil(t, state.Result)
	assert.Equal(t, "room-1", state.RoomID)
}

func TestSession_Join(t *testing.T) {
	t.Run("First and second joins get First and Second", func(t *testing.T) {
		session := NewSession("s1", "room-1")

		slot, err := session.Join()
		require.NoError(t, err)
		assert.Equal(t, entity.SlotFirst, slot)
		assert.Equal(t, StatusReady, session.Status())

		slot, err = session.Join()
		require.NoError(t, err)
		assert.Equal(t, entity.SlotSecond, slot)
		assert.Equal(t, StatusActive, session.Status())
	})

	t.Run("Third join fails with ErrRoomFull and leaves slots unchanged", func(t *testing.T) {
		// Given: a full session
		session := newActiveSession(t)

		// When: a third player joins
		slot, err := session.Join()

		// Then: the room is full and nothing changed
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Equal(t, entity.SlotNone, slot)

		state := session.Snapshot()
		assert.Equal(t, []entity.Slot{entity.SlotFirst, entity.SlotSecond}, state.Players)
		assert.Equal(t, StatusActive, state.Status)
	})

	t.Run("Free slot is reassigned after a leave", func(t *testing.T) {
		// Given: First joined and left before anyone else came
		session := NewSession("s1", "room-1")
		_, err := session.Join()
		require.NoError(t, err)
		assert.Nil(t, session.Leave(entity.SlotFirst))
		assert.Equal(t, StatusWaiting, session.Status())

		// When: someone joins again
		slot, err := session.Join()

		// Then: First is handed out again
		require.NoError(t, err)
		assert.Equal(t, entity.SlotFirst, slot)
	})

	t.Run("Join on a finished session fails", func(t *testing.T) {
		session := newActiveSession(t)
		_, err := session.Surrender(entity.SlotFirst)
		require.NoError(t, err)
		session.Leave(entity.SlotFirst)

		_, err = session.Join()
		require.ErrorIs(t, err, apperror.ErrSessionTerminated)
	})

	t.Run("Join on a closed session fails", func(t *testing.T) {
		session := NewSession("s1", "room-1")
		require.True(t, session.CloseIfEmpty())

		_, err := session.Join()
		require.ErrorIs(t, err, apperror.ErrSessionClosed)
	})
}

func TestSession_Move(t *testing.T) {
	t.Run("Accepted move flips the turn", func(t *testing.T) {
		// Given: an active session
		session := newActiveSession(t)

		// When: First plays the center
		result, err := session.Move(at(7, 7), entity.SlotFirst)

		// Then: the cell is taken and it is Second's turn
		require.NoError(t, err)
		assert.Nil(t, result)

		state := session.Snapshot()
		assert.Equal(t, entity.SlotFirst, state.Board[7][7])
		assert.Equal(t, entity.SlotSecond, state.CurrentTurn)
		assert.Equal(t, StatusActive, state.Status)
		assert.Equal(t, []entity.Move{{Coordinate: at(7, 7), Slot: entity.SlotFirst}}, session.Moves())
	})

	t.Run("Out of turn move is rejected and board unchanged", func(t *testing.T) {
		// Given: First made the opening move
		session := newActiveSession(t)
		_, err := session.Move(at(7, 7), entity.SlotFirst)
		require.NoError(t, err)
		before := session.Snapshot()

		// When: First tries to move again
		_, err = session.Move(at(7, 8), entity.SlotFirst)

		// Then: ErrNotYourTurn and no change
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, before, session.Snapshot())
	})

	t.Run("Occupied cell is an invalid move", func(t *testing.T) {
		session := newActiveSession(t)
		_, err := session.Move(at(7, 7), entity.SlotFirst)
		require.NoError(t, err)
		before := session.Snapshot()

		_, err = session.Move(at(7, 7), entity.SlotSecond)

		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, before, session.Snapshot())
	})

	t.Run("Out of bounds is an invalid move", func(t *testing.T) {
		session := newActiveSession(t)

		for _, c := range []entity.Coordinate{at(-1, 0), at(0, 15), at(15, 15)} {
			_, err := session.Move(c, entity.SlotFirst)

			require.ErrorIs(t, err, apperror.ErrInvalidMove)
			require.ErrorIs(t, err, apperror.ErrOutOfBounds)
		}
		assert.Equal(t, entity.SlotFirst, session.Snapshot().CurrentTurn)
	})

	t.Run("Move before the second player joins is rejected", func(t *testing.T) {
		session := NewSession("s1", "room-1")
		_, err := session.Join()
		require.NoError(t, err)

		_, err = session.Move(at(0, 0), entity.SlotFirst)
		require.ErrorIs(t, err, apperror.ErrGameNotStarted)
	})

	t.Run("Horizontal win finishes the session", func(t *testing.T) {
		// Given: First on (7,3)..(7,6), Second on (0,0)..(0,2)
		session := newActiveSession(t)
		moves := []struct {
			c    entity.Coordinate
			slot entity.Slot
		}{
			{at(7, 3), entity.SlotFirst}, {at(0, 0), entity.SlotSecond},
			{at(7, 4), entity.SlotFirst}, {at(0, 1), entity.SlotSecond},
			{at(7, 5), entity.SlotFirst}, {at(0, 2), entity.SlotSecond},
			{at(7, 6), entity.SlotFirst},
		}
		for _, m := range moves {
			result, err := session.Move(m.c, m.slot)
			require.NoError(t, err)
			require.Nil(t, result)
		}
		_, err := session.Move(at(0, 3), entity.SlotSecond)
		require.NoError(t, err)

		// When: First plays (7,7)
		result, err := session.Move(at(7, 7), entity.SlotFirst)

		// Then: First wins with (7,3)..(7,7)
		require.NoError(t, err)
		require.NotNil(t, result)
		require.NotNil(t, result.Winner)
		assert.Equal(t, entity.SlotFirst, *result.Winner)
		assert.Equal(t, []entity.Coordinate{at(7, 3), at(7, 4), at(7, 5), at(7, 6), at(7, 7)}, result.WinLine)
		assert.False(t, result.IsDraw)
		assert.Equal(t, StatusFinished, session.Status())
	})

	t.Run("Move on a finished session never mutates the board", func(t *testing.T) {
		// Given: a surrendered session
		session := newActiveSession(t)
		_, err := session.Surrender(entity.SlotSecond)
		require.NoError(t, err)
		before := session.Snapshot()

		for _, slot := range []entity.Slot{entity.SlotFirst, entity.SlotSecond} {
			// When: either player tries to move
			_, err = session.Move(at(1, 1), slot)

			// Then: ErrSessionTerminated and the board is untouched
			require.ErrorIs(t, err, apperror.ErrSessionTerminated)
			assert.Equal(t, before, session.Snapshot())
		}
	})

	t.Run("Full board without five is a draw", func(t *testing.T) {
		// Given: a pattern where no axis has more than two equal stones in a row
		session := newActiveSession(t)

		var firsts, seconds []entity.Coordinate
		for r := range entity.BoardSize {
			for c := range entity.BoardSize {
				if (c/2+r)%2 == 0 {
					firsts = append(firsts, at(r, c))
				} else {
					seconds = append(seconds, at(r, c))
				}
			}
		}
		require.Len(t, firsts, len(seconds)+1)

		// When: the players fill the board alternately
		var result *entity.Result
		for i := range firsts {
			var err error
			result, err = session.Move(firsts[i], entity.SlotFirst)
			require.NoError(t, err)

			if i < len(seconds) {
				require.Nil(t, result)
				result, err = session.Move(seconds[i], entity.SlotSecond)
				require.NoError(t, err)
				require.Nil(t, result)
			}
		}

		// Then: the last move is a draw with no winner
		require.NotNil(t, result)
		assert.True(t, result.IsDraw)
		assert.Nil(t, result.Winner)
		assert.Nil(t, result.WinLine)
		assert.Equal(t, StatusFinished, session.Status())
	})
}

func TestSession_Surrender(t *testing.T) {
	t.Run("Winner is the other slot regardless of turn", func(t *testing.T) {
		// Given: it is First's turn
		session := newActiveSession(t)

		// When: First surrenders
		result, err := session.Surrender(entity.SlotFirst)

		// Then: Second wins
		require.NoError(t, err)
		require.NotNil(t, result.Winner)
		assert.Equal(t, entity.SlotSecond, *result.Winner)
		assert.Nil(t, result.WinLine)
		assert.False(t, result.IsDraw)
		assert.Equal(t, StatusFinished, session.Status())
	})

	t.Run("Surrender in a ready session", func(t *testing.T) {
		session := NewSession("s1", "room-1")
		_, err := session.Join()
		require.NoError(t, err)

		result, err := session.Surrender(entity.SlotFirst)

		require.NoError(t, err)
		assert.Equal(t, entity.SlotSecond, *result.Winner)
	})

	t.Run("Second surrender fails", func(t *testing.T) {
		session := newActiveSession(t)
		_, err := session.Surrender(entity.SlotSecond)
		require.NoError(t, err)

		_, err = session.Surrender(entity.SlotFirst)
		require.ErrorIs(t, err, apperror.ErrSessionTerminated)
	})

	t.Run("Surrender in an empty session fails", func(t *testing.T) {
		session := NewSession("s1", "room-1")

		_, err := session.Surrender(entity.SlotFirst)
		require.ErrorIs(t, err, apperror.ErrGameNotStarted)
	})
}

func TestSession_Leave(t *testing.T) {
	t.Run("Leaving an active game forfeits to the other slot", func(t *testing.T) {
		// Given: an active two-player session
		session := newActiveSession(t)

		// When: Second leaves
		result := session.Leave(entity.SlotSecond)

		// Then: First wins by forfeit with no line
		require.NotNil(t, result)
		require.NotNil(t, result.Winner)
		assert.Equal(t, entity.SlotFirst, *result.Winner)
		assert.Nil(t, result.WinLine)
		assert.False(t, result.IsDraw)
		assert.Equal(t, entity.ReasonForfeit, result.Reason)
		assert.Equal(t, StatusFinished, session.Status())
		assert.Equal(t, 1, session.PlayerCount())
	})

	t.Run("Last player leaving empties the session", func(t *testing.T) {
		session := NewSession("s1", "room-1")
		_, err := session.Join()
		require.NoError(t, err)

		result := session.Leave(entity.SlotFirst)

		assert.Nil(t, result)
		assert.Equal(t, 0, session.PlayerCount())
		assert.True(t, session.CloseIfEmpty())
		assert.True(t, session.IsClosed())
	})

	t.Run("Leaving a finished game produces no new result", func(t *testing.T) {
		session := newActiveSession(t)
		_, err := session.Surrender(entity.SlotFirst)
		require.NoError(t, err)

		assert.Nil(t, session.Leave(entity.SlotSecond))
		assert.Nil(t, session.Leave(entity.SlotFirst))
		assert.Equal(t, 0, session.PlayerCount())
	})

	t.Run("Leaving with an unheld slot is a no-op", func(t *testing.T) {
		session := NewSession("s1", "room-1")
		_, err := session.Join()
		require.NoError(t, err)

		assert.Nil(t, session.Leave(entity.SlotSecond))
		assert.Equal(t, 1, session.PlayerCount())
	})

	t.Run("CloseIfEmpty refuses an occupied session", func(t *testing.T) {
		session := newActiveSession(t)

		assert.False(t, session.CloseIfEmpty())
		assert.False(t, session.IsClosed())
	})
}

func TestSession_LeaveWithGrace(t *testing.T) {
	t.Run("Expiry forfeits to the remaining player", func(t *testing.T) {
		// Given: an active session and a short grace period
		session := newActiveSession(t)
		tokens := make(chan uint64, 1)

		// When: Second drops
		result, suspended := session.LeaveWithGrace(entity.SlotSecond, 10*time.Millisecond, func(token uint64) {
			tokens <- token
		})

		// Then: the game is paused, not finished
		require.True(t, suspended)
		assert.Nil(t, result)
		assert.Equal(t, StatusPaused, session.Status())

		_, err := session.Move(at(0, 0), entity.SlotFirst)
		require.ErrorIs(t, err, apperror.ErrGameNotStarted)

		// When: the timer fires
		var token uint64
		select {
		case token = <-tokens:
		case <-time.After(time.Second):
			t.Fatal("grace timer did not fire")
		}
		result = session.ExpireGrace(token)

		// Then: First wins by forfeit, and a stale token does nothing
		require.NotNil(t, result)
		assert.Equal(t, entity.SlotFirst, *result.Winner)
		assert.Equal(t, StatusFinished, session.Status())
		assert.Nil(t, session.ExpireGrace(token))
	})

	t.Run("Rejoin cancels the pending forfeit", func(t *testing.T) {
		// Given: a paused session
		session := newActiveSession(t)
		_, err := session.Move(at(7, 7), entity.SlotFirst)
		require.NoError(t, err)

		fired := make(chan uint64, 1)
		_, suspended := session.LeaveWithGrace(entity.SlotSecond, time.Hour, func(token uint64) { fired <- token })
		require.True(t, suspended)

		// When: a player joins again
		slot, err := session.Join()

		// Then: the free slot is returned, play resumes and the old token is void
		require.NoError(t, err)
		assert.Equal(t, entity.SlotSecond, slot)
		assert.Equal(t, StatusActive, session.Status())
		assert.Nil(t, session.ExpireGrace(1))

		_, err = session.Move(at(7, 8), entity.SlotSecond)
		require.NoError(t, err)
	})

	t.Run("Both players gone cancels the timer", func(t *testing.T) {
		session := newActiveSession(t)
		_, suspended := session.LeaveWithGrace(entity.SlotFirst, time.Hour, func(uint64) {})
		require.True(t, suspended)

		result := session.Leave(entity.SlotSecond)

		assert.Nil(t, result)
		assert.True(t, session.CloseIfEmpty())
		assert.Nil(t, session.ExpireGrace(1))
	})

	t.Run("Zero grace behaves like Leave", func(t *testing.T) {
		session := newActiveSession(t)

		result, suspended := session.LeaveWithGrace(entity.SlotFirst, 0, func(uint64) {})

		assert.False(t, suspended)
		require.NotNil(t, result)
		assert.Equal(t, entity.SlotSecond, *result.Winner)
	})
}

func TestSession_ConcurrentMoves(t *testing.T) {
	// Given: an active session
	session := newActiveSession(t)

	// When: both players hammer the same cell concurrently
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		slot := entity.SlotFirst
		if i%2 == 1 {
			slot = entity.SlotSecond
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.Move(at(3, 3), slot)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// Then: exactly one move was accepted
	accepted := 0
	for err := range errs {
		if err == nil {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Len(t, session.Moves(), 1)
}
