package background

import (
	"encoding/json"
	"fmt"
	"sync"

	"gitee.com/czyczk/wrapdek-sharing/internal/eventmgr"
	"gitee.com/czyczk/wrapdek-sharing/internal/service"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// RevocationListenerServer 是会话主机一侧的撤销监听服务器：
// 监听 wrap 令牌撤销事件，驱动执行会话管理器销毁密钥材料并留下撤销确认证据。
// 事件交付为 at-least-once，依赖 `OnRevoke` 的幂等性去重。
type RevocationListenerServer struct {
	EnforcementService service.EnforcementServiceInterface
	EventMgr           eventmgr.IEventManager
	wg                 sync.WaitGroup
	chanQuit           chan int
	reg                eventmgr.IEventRegistration
	isStarting         bool
	isStarted          bool
	isStopping         bool
}

func NewRevocationListenerServer(enforcementService service.EnforcementServiceInterface, eventManager eventmgr.IEventManager) *RevocationListenerServer {
	return &RevocationListenerServer{
		EnforcementService: enforcementService,
		EventMgr:           eventManager,
		wg:                 sync.WaitGroup{},
		chanQuit:           make(chan int),
		reg:                nil,
		isStarting:         false,
		isStarted:          false,
		isStopping:         false,
	}
}

// Start starts the revocation listener server to respond to wrap revocation events.
func (s *RevocationListenerServer) Start() error {
	// Don't start the server again if it has been started.
	log.Infoln("正在启动撤销监听服务器...")

	if s.isStarting {
		return fmt.Errorf("撤销监听服务器正在启动")
	} else if s.isStarted {
		return fmt.Errorf("撤销监听服务器已启动")
	}

	s.isStarting = true

	log.Debugf("正在尝试监听事件 '%v'...", eventmgr.EventIDWrapRevoked)
	reg, notifier, err := s.EventMgr.RegisterEvent(eventmgr.EventIDWrapRevoked)
	if err != nil {
		return errors.Wrap(err, "无法监听 wrap 令牌撤销事件")
	}

	s.reg = reg

	log.Debugf("正在创建撤销监听服务工作单元...")
	s.wg.Add(1)
	go s.createRevocationListenerWorker(notifier)

	s.isStarting = false
	s.isStarted = true
	log.Infoln("撤销监听服务器已启动。")

	return nil
}

func (s *RevocationListenerServer) createRevocationListenerWorker(chanRevocationNotifier <-chan eventmgr.IEvent) {
	log.Debugf("撤销监听服务工作单元已创建。")

workerLoop:
	for {
		select {
		case event := <-chanRevocationNotifier:
			var payload eventmgr.WrapRevokedEvent
			if err := json.Unmarshal(event.GetPayload(), &payload); err != nil {
				log.Errorln("撤销监听服务工作单元无法解析事件内容")
				continue
			}

			log.Debugf("撤销监听服务工作单元收到撤销事件，wrap 令牌 ID: %v。", payload.WrapID)

			if err := s.EnforcementService.OnRevoke(payload.WrapID); err != nil {
				log.Errorln(errors.Wrapf(err, "撤销监听服务工作单元无法处理 wrap 令牌 %v 的撤销", payload.WrapID))
				continue
			}
		case <-s.chanQuit:
			// Break the for loop when receiving a quit signal
			log.Debug("撤销监听服务工作单元收到退出信号。")
			s.wg.Done()
			break workerLoop
		}
	}
}

// Stop stops the revocation listener server from responding to wrap revocation events.
//
// Returns
//   a wait group that can be used to block the caller Go routine
func (s *RevocationListenerServer) Stop() (*sync.WaitGroup, error) {
	// Don't send stop signals again if the server has already been called to stop.
	if s.isStopping {
		return nil, fmt.Errorf("撤销监听服务器正在停止")
	} else if !s.isStarted {
		return nil, fmt.Errorf("撤销监听服务器已停止")
	}

	s.isStopping = true

	s.chanQuit <- 0

	if err := s.EventMgr.UnregisterEvent(s.reg); err != nil {
		log.Errorln(errors.Wrap(err, "无法取消监听 wrap 令牌撤销事件"))
	}

	s.isStarted = false
	s.isStopping = false

	return &s.wg, nil
}
