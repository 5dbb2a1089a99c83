package eventmgr

import (
	"fmt"
	"sync"
)

// 单个订阅通道的缓冲大小。协议内事件量很小，缓冲满说明消费方已停止工作。
const memEventChanBufferSize = 64

type memEvent struct {
	eventName string
	payload   []byte
}

func (e *memEvent) GetEventName() string {
	return e.eventName
}

func (e *memEvent) GetPayload() []byte {
	return e.payload
}

type memEventRegistration struct {
	eventID string
	ch      chan IEvent
}

func (r *memEventRegistration) GetEventID() string {
	return r.eventID
}

// EventManagerMemImpl 实现了 `IEventManager` 接口，为进程内的事件订阅与发布提供支持。
// 分布式部署中这里将换成链上事件或消息队列的实现，状态机与幂等性保证不变。
type EventManagerMemImpl struct {
	mu            sync.RWMutex
	registrations map[string][]*memEventRegistration
}

func NewEventManagerMemImpl() *EventManagerMemImpl {
	return &EventManagerMemImpl{
		registrations: make(map[string][]*memEventRegistration),
	}
}

func (m *EventManagerMemImpl) RegisterEvent(eventID string) (IEventRegistration, <-chan IEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg := &memEventRegistration{
		eventID: eventID,
		ch:      make(chan IEvent, memEventChanBufferSize),
	}
	m.registrations[eventID] = append(m.registrations[eventID], reg)

	return reg, reg.ch, nil
}

func (m *EventManagerMemImpl) UnregisterEvent(reg IEventRegistration) error {
	memReg, ok := reg.(*memEventRegistration)
	if !ok {
		return fmt.Errorf("该注册并非由此事件管理器产生")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	regs := m.registrations[memReg.eventID]
	for i, r := range regs {
		if r == memReg {
			m.registrations[memReg.eventID] = append(regs[:i], regs[i+1:]...)
			close(memReg.ch)
			return nil
		}
	}

	return fmt.Errorf("找不到事件 '%v' 的该注册", memReg.eventID)
}

func (m *EventManagerMemImpl) Publish(eventID string, payload []byte) error {
	m.mu.RLock()
	regs := make([]*memEventRegistration, len(m.registrations[eventID]))
	copy(regs, m.registrations[eventID])
	m.mu.RUnlock()

	for _, reg := range regs {
		reg.ch <- &memEvent{
			eventName: eventID,
			payload:   payload,
		}
	}

	return nil
}
