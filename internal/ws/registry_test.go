package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryConcurrentJoinLeave(t *testing.T) {
	reg := NewRegistry()
	const clients, rounds = 50, 200

	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := testClient(fmt.Sprintf("u%d", i))
			own := userRoom(c.info.UserID)
			reg.Join(c, own)
			for j := 0; j < rounds; j++ {
				room := chatRoom(fmt.Sprintf("c%d", j%7))
				reg.Join(c, room)
				for _, member := range reg.MembersOf(room) {
					_ = member.info.ConnID
				}
				_ = reg.RoomsOf(c)
				if j%3 == 0 {
					reg.Leave(c, room)
				}
			}
			reg.LeaveAll(c)
			assert.Empty(t, reg.RoomsOf(c))
		}(i)
	}
	wg.Wait()

	assert.Zero(t, reg.RoomCount())
	for j := 0; j < 7; j++ {
		assert.Empty(t, reg.MembersOf(chatRoom(fmt.Sprintf("c%d", j))))
	}
}
