package eventmgr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func receiveEventWithTimeout(t *testing.T, ch <-chan IEvent) IEvent {
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("等待事件超时")
		return nil
	}
}

func TestPublishDeliversToRegisteredChannel(t *testing.T) {
	mgr := NewEventManagerMemImpl()

	reg, ch, err := mgr.RegisterEvent(EventIDReceiptCommitted)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, EventIDReceiptCommitted, reg.GetEventID())

	err = mgr.Publish(EventIDReceiptCommitted, []byte("payload-1"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	event := receiveEventWithTimeout(t, ch)
	assert.Equal(t, EventIDReceiptCommitted, event.GetEventName())
	assert.Equal(t, []byte("payload-1"), event.GetPayload())
}

func TestPublishDeliversToEveryRegistration(t *testing.T) {
	mgr := NewEventManagerMemImpl()

	_, ch1, err := mgr.RegisterEvent(EventIDWrapRevoked)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	_, ch2, err := mgr.RegisterEvent(EventIDWrapRevoked)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	err = mgr.Publish(EventIDWrapRevoked, []byte("payload-1"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.Equal(t, []byte("payload-1"), receiveEventWithTimeout(t, ch1).GetPayload())
	assert.Equal(t, []byte("payload-1"), receiveEventWithTimeout(t, ch2).GetPayload())
}

func TestPublishSkipsOtherEventIDs(t *testing.T) {
	mgr := NewEventManagerMemImpl()

	_, ch, err := mgr.RegisterEvent(EventIDReceiptCommitted)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	err = mgr.Publish(EventIDWrapRevoked, []byte("payload-1"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	select {
	case <-ch:
		t.Fatal("不应收到其他事件 ID 的事件")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterClosesChannelAndStopsDelivery(t *testing.T) {
	mgr := NewEventManagerMemImpl()

	reg, ch, err := mgr.RegisterEvent(EventIDReceiptCommitted)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	err = mgr.UnregisterEvent(reg)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	// 注销后通道关闭
	_, isOpen := <-ch
	assert.False(t, isOpen)

	// 再次注销同一注册应报错
	assert.Error(t, mgr.UnregisterEvent(reg))
}
