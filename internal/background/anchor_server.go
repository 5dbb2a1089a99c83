package background

import (
	"fmt"
	"sync"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/eventmgr"
	"gitee.com/czyczk/wrapdek-sharing/internal/service"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// AnchorServer 是审计锚定后台服务器：按固定周期聚合证据批次，
// 并在批次回执可用后驱动签发协调器完成待定 wrap 令牌的签发。
type AnchorServer struct {
	AuditService    service.AuditServiceInterface
	IssuanceService service.IssuanceServiceInterface
	EventMgr        eventmgr.IEventManager
	FlushInterval   time.Duration
	wg              sync.WaitGroup
	chanQuit        chan int
	reg             eventmgr.IEventRegistration
	isStarting      bool
	isStarted       bool
	isStopping      bool
}

func NewAnchorServer(auditService service.AuditServiceInterface, issuanceService service.IssuanceServiceInterface, eventManager eventmgr.IEventManager, flushInterval time.Duration) *AnchorServer {
	return &AnchorServer{
		AuditService:    auditService,
		IssuanceService: issuanceService,
		EventMgr:        eventManager,
		FlushInterval:   flushInterval,
		wg:              sync.WaitGroup{},
		chanQuit:        make(chan int),
		reg:             nil,
		isStarting:      false,
		isStarted:       false,
		isStopping:      false,
	}
}

// Start starts the anchor server to flush evidence batches periodically and to finalize pending wrap tokens on batch receipts.
func (s *AnchorServer) Start() error {
	// Don't start the server again if it has been started.
	log.Infoln("正在启动审计锚定服务器...")

	if s.isStarting {
		return fmt.Errorf("审计锚定服务器正在启动")
	} else if s.isStarted {
		return fmt.Errorf("审计锚定服务器已启动")
	}

	s.isStarting = true

	// Subscribe to batch receipt events and pass the channel to the worker to be created.
	log.Debugf("正在尝试监听事件 '%v'...", eventmgr.EventIDReceiptCommitted)
	reg, notifier, err := s.EventMgr.RegisterEvent(eventmgr.EventIDReceiptCommitted)
	if err != nil {
		return errors.Wrap(err, "无法监听批次回执事件")
	}

	s.reg = reg

	log.Debugf("正在创建审计锚定服务工作单元...")
	s.wg.Add(1)
	go s.createAnchorServerWorker(notifier)

	s.isStarting = false
	s.isStarted = true
	log.Infoln("审计锚定服务器已启动。")

	return nil
}

func (s *AnchorServer) createAnchorServerWorker(chanReceiptNotifier <-chan eventmgr.IEvent) {
	log.Debugf("审计锚定服务工作单元已创建。")

	ticker := time.NewTicker(s.FlushInterval)
	defer ticker.Stop()

workerLoop:
	for {
		select {
		case <-ticker.C:
			// 周期性聚合当前队列中的证据并锚定
			receipt, err := s.AuditService.FlushBatch()
			if err != nil {
				log.Errorln(errors.Wrap(err, "审计锚定服务工作单元无法聚合证据批次"))
				continue
			}
			if receipt != nil {
				log.Debugf("审计锚定服务工作单元完成批次锚定。批次 ID: %v。", receipt.BatchID)
			}
		case <-chanReceiptNotifier:
			// 收到批次回执后驱动协调器完成待定令牌的签发
			finalized, err := s.IssuanceService.FinalizePending()
			if err != nil {
				log.Errorln(errors.Wrap(err, "审计锚定服务工作单元无法完成待定令牌签发"))
				continue
			}
			if finalized > 0 {
				log.Debugf("审计锚定服务工作单元完成 %v 个 wrap 令牌的签发。", finalized)
			}
		case <-s.chanQuit:
			// Break the for loop when receiving a quit signal
			log.Debug("审计锚定服务工作单元收到退出信号。")
			s.wg.Done()
			break workerLoop
		}
	}
}

// Stop stops the anchor server from flushing batches and finalizing wrap tokens.
//
// Returns
//   a wait group that can be used to block the caller Go routine
func (s *AnchorServer) Stop() (*sync.WaitGroup, error) {
	// Don't send stop signals again if the server has already been called to stop.
	if s.isStopping {
		return nil, fmt.Errorf("审计锚定服务器正在停止")
	} else if !s.isStarted {
		return nil, fmt.Errorf("审计锚定服务器已停止")
	}

	s.isStopping = true

	s.chanQuit <- 0

	// Unsubscribe from the batch receipt events
	if err := s.EventMgr.UnregisterEvent(s.reg); err != nil {
		log.Errorln(errors.Wrap(err, "无法取消监听批次回执事件"))
	}

	s.isStarted = false
	s.isStopping = false

	return &s.wg, nil
}
