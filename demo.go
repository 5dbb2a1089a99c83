package main

import (
	"fmt"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/eventmgr"
	"gitee.com/czyczk/wrapdek-sharing/internal/ledger/memledger"
	"gitee.com/czyczk/wrapdek-sharing/internal/service"
	"gitee.com/czyczk/wrapdek-sharing/internal/store"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/cipherutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/request"
	"github.com/XiaoYao-austin/ppks"
	"github.com/urfave/cli/v2"
)

const (
	demoRequesterDid  = "did:example:alice"
	demoSessionHostID = "tee-host-1"
	demoResourceID    = "resource-1"
)

// getDemoFunc 返回 demo 子命令的动作：用临时生成的密钥在进程内走完整个共享流程，
// 从身份注册、资源入库、链上授权、访问请求一路到会话内计量使用与撤销。
func getDemoFunc() func(c *cli.Context) error {
	demoFunc := func(c *cli.Context) error {
		fmt.Println("=== wrap-DEK 机密资源共享流程演示 ===")

		// 为协议各方生成临时 SM2 密钥对
		issuerKey, err := ppks.GenPrivKey()
		if err != nil {
			return err
		}
		hostKey, err := ppks.GenPrivKey()
		if err != nil {
			return err
		}
		auditKey, err := ppks.GenPrivKey()
		if err != nil {
			return err
		}
		requesterKey, err := ppks.GenPrivKey()
		if err != nil {
			return err
		}

		// 以内存实现搭建协议核心
		eventManager := eventmgr.NewEventManagerMemImpl()
		identityRegistry := memledger.NewIdentityRegistryMemImpl()
		authLedger := memledger.NewAuthLedgerMemImpl()
		resourceStore := store.NewResourceStore(nil, nil)

		auditSvc := service.NewAuditService(auditKey, eventManager, nil)
		issuanceSvc := service.NewIssuanceService(issuerKey, identityRegistry, authLedger,
			auditSvc, resourceStore, eventManager, 60*time.Second)
		issuanceSvc.RegisterSessionHost(demoSessionHostID, &hostKey.PublicKey)
		enforcementSvc := service.NewEnforcementService(demoSessionHostID, hostKey, &issuerKey.PublicKey,
			issuanceSvc, resourceStore, auditSvc)

		// 第 1 步：注册请求方身份
		fmt.Println("\n--- 第 1 步：注册请求方身份 ---")
		identityReceipt, err := identityRegistry.Register(demoRequesterDid,
			cipherutils.GetSM2PublicKeyFingerprint(&requesterKey.PublicKey))
		if err != nil {
			return err
		}
		fmt.Printf("身份已注册。DID: %v，回执 ID: %v\n", identityReceipt.Did, identityReceipt.ReceiptID)

		// 第 2 步：资源入库（生成 DEK 并加密内容）
		fmt.Println("\n--- 第 2 步：资源入库 ---")
		res, err := resourceStore.CreateResource(demoResourceID, []byte("机密数据集内容"))
		if err != nil {
			return err
		}
		fmt.Printf("资源已存储。ID: %v，指纹: %v\n", res.ResourceID, res.Fingerprint)

		// 第 3 步：在授权账本上发布授权
		fmt.Println("\n--- 第 3 步：发布链上授权 ---")
		authorizationID, err := authLedger.PublishAuthorization(demoResourceID, demoRequesterDid, time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("授权已发布。授权 ID: %v\n", authorizationID)

		// 第 4 步：提交访问请求
		fmt.Println("\n--- 第 4 步：提交访问请求 ---")
		requestID := "req-demo-1"
		signature, err := cipherutils.SignBytes(requesterKey, []byte(requestID))
		if err != nil {
			return err
		}
		req := &request.AccessRequest{
			RequestID:              requestID,
			RequesterDid:           demoRequesterDid,
			ResourceID:             demoResourceID,
			AuthorizationID:        authorizationID,
			AttestationSummaryHash: cipherutils.Sha256Hex([]byte("attestation-summary")),
			UsageParameters:        map[string]interface{}{"maxCalls": 3, "purpose": "analysis"},
			Timestamp:              time.Now(),
			Signature:              signature,
		}

		wrapID, accepted, err := issuanceSvc.HandleRequest(req, demoSessionHostID)
		if err != nil {
			return err
		}
		fmt.Printf("请求处理结果: accepted=%v，wrap 令牌 ID: %v\n", accepted, wrapID)

		// 审计回执落地前令牌不可获取
		if _, err := issuanceSvc.FetchForSession(wrapID, demoSessionHostID); err != nil {
			fmt.Printf("回执落地前尝试获取令牌: %v（符合预期，稍后重试）\n", err)
		}

		// 第 5 步：聚合证据批次并完成签发
		fmt.Println("\n--- 第 5 步：锚定审计批次并完成签发 ---")
		batchReceipt, err := auditSvc.FlushBatch()
		if err != nil {
			return err
		}
		fmt.Printf("批次已锚定。批次 ID: %v，Merkle 根: %v\n", batchReceipt.BatchID, batchReceipt.MerkleRoot)

		finalized, err := issuanceSvc.FinalizePending()
		if err != nil {
			return err
		}
		fmt.Printf("完成签发的 wrap 令牌数: %v\n", finalized)

		// 第 6 步：会话内计量使用（上限 3 次）
		fmt.Println("\n--- 第 6 步：会话内计量使用 ---")
		for i := 1; i <= 3; i++ {
			outputHash, err := enforcementSvc.Use(wrapID, "analysis")
			if err != nil {
				return err
			}
			fmt.Printf("第 %v 次使用成功。输出摘要: %v\n", i, outputHash)
		}

		if _, err := enforcementSvc.Use(wrapID, "analysis"); err != nil {
			fmt.Printf("第 4 次使用被拒绝: %v（已达调用上限）\n", err)
		}

		// 第 7 步：撤销授权并确认密钥销毁
		fmt.Println("\n--- 第 7 步：撤销授权 ---")
		if err := authLedger.RevokeAuthorization(authorizationID); err != nil {
			return err
		}
		revoked, err := issuanceSvc.OnAuthorizationRevoked(authorizationID)
		if err != nil {
			return err
		}
		fmt.Printf("已撤销的 wrap 令牌数: %v\n", revoked)

		if err := enforcementSvc.OnRevoke(wrapID); err != nil {
			return err
		}
		fmt.Println("会话已确认撤销并销毁密钥材料。")

		if _, err := enforcementSvc.Use(wrapID, "analysis"); err != nil {
			fmt.Printf("撤销后尝试使用: %v（符合预期）\n", err)
		}

		// 第 8 步：锚定剩余证据（使用与撤销确认）
		fmt.Println("\n--- 第 8 步：锚定剩余证据 ---")
		finalReceipt, err := auditSvc.FlushBatch()
		if err != nil {
			return err
		}
		fmt.Printf("批次已锚定。批次 ID: %v，序号: %v\n", finalReceipt.BatchID, finalReceipt.Sequence)

		fmt.Println("\n=== 演示结束 ===")
		return nil
	}

	return demoFunc
}
