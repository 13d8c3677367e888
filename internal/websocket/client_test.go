package websocket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_Enqueue_AfterCloseReturnsFalse(t *testing.T) {
	client := &Client{
		UserID:       "1",
		ConnectionID: "conn-1",
		send:         make(chan []byte, 2),
	}

	client.closeSend()

	ok := client.enqueue([]byte("payload"))

	assert.False(t, ok, "Отправка в закрытый канал должна возвращать false")
}

func TestClient_CloseSend_DoubleCloseIsSafe(t *testing.T) {
	client := &Client{
		UserID:       "1",
		ConnectionID: "conn-1",
		send:         make(chan []byte, 2),
	}

	assert.NotPanics(t, func() {
		client.closeSend()
		client.closeSend()
	})
}

func TestClient_Enqueue_ConcurrentWithCloseDoesNotPanic(t *testing.T) {
	// Гонка enqueue с закрытием канала не должна приводить к panic
	// на отправке в закрытый канал
	for i := 0; i < 100; i++ {
		client := &Client{
			UserID:       "1",
			ConnectionID: "conn-1",
			send:         make(chan []byte, 1),
		}

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				client.enqueue([]byte("payload"))
			}
		}()
		go func() {
			defer wg.Done()
			client.closeSend()
		}()
		wg.Wait()
	}
}
