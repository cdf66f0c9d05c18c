package network

import (
	"testing"
)

func TestRegisterAndSendTo(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("conn1")

	b.SendTo("conn1", []byte("hello"))

	select {
	case msg := <-ch:
		if string(msg) != "hello" {
			t.Errorf("Expected hello, got %s", msg)
		}
	default:
		t.Fatal("Message was not delivered")
	}
}

func TestSendTo_UnknownSubscriber(t *testing.T) {
	b := NewBroadcaster()
	// Не должно паниковать и блокировать
	b.SendTo("ghost", []byte("hello"))
}

func TestBroadcast_ReachesEveryone(t *testing.T) {
	b := NewBroadcaster()
	ch1 := b.Register("conn1")
	ch2 := b.Register("conn2")

	b.Broadcast([]byte("all"))

	for i, ch := range []chan []byte{ch1, ch2} {
		select {
		case msg := <-ch:
			if string(msg) != "all" {
				t.Errorf("Subscriber %d: expected all, got %s", i, msg)
			}
		default:
			t.Errorf("Subscriber %d did not receive the broadcast", i)
		}
	}
}

func TestUnregister_ClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("conn1")

	b.Unregister("conn1")

	if _, open := <-ch; open {
		t.Error("Channel must be closed after Unregister")
	}
	if b.HasSubscriber("conn1") {
		t.Error("Subscriber must be gone")
	}
	// Повторный Unregister безопасен
	b.Unregister("conn1")
}

func TestRegister_ReplacesOldChannel(t *testing.T) {
	b := NewBroadcaster()
	old := b.Register("conn1")
	fresh := b.Register("conn1")

	if _, open := <-old; open {
		t.Error("Old channel must be closed on re-registration")
	}

	b.SendTo("conn1", []byte("ping"))
	select {
	case msg := <-fresh:
		if string(msg) != "ping" {
			t.Errorf("Expected ping, got %s", msg)
		}
	default:
		t.Error("Fresh channel must receive messages")
	}

	if b.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", b.SubscriberCount())
	}
}

func TestSendTo_DropsWhenFull(t *testing.T) {
	b := NewBroadcaster()
	b.Register("conn1")

	// Переполняем буфер: отправка не должна блокировать
	for i := 0; i < 200; i++ {
		b.SendTo("conn1", []byte("x"))
	}
}
