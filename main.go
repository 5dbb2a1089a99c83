package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/appinit"
	"gitee.com/czyczk/wrapdek-sharing/internal/background"
	"gitee.com/czyczk/wrapdek-sharing/internal/controller"
	"gitee.com/czyczk/wrapdek-sharing/internal/eventmgr"
	"gitee.com/czyczk/wrapdek-sharing/internal/global"
	"gitee.com/czyczk/wrapdek-sharing/internal/ledger"
	"gitee.com/czyczk/wrapdek-sharing/internal/ledger/fabricledger"
	"gitee.com/czyczk/wrapdek-sharing/internal/ledger/memledger"
	"gitee.com/czyczk/wrapdek-sharing/internal/service"
	"gitee.com/czyczk/wrapdek-sharing/internal/store"

	"github.com/gin-gonic/gin"
	ipfs "github.com/ipfs/go-ipfs-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	var configPath, sdkConfigPath string

	// Functions to be used by the cli helper
	serveFunc := getServeFunc(&configPath, &sdkConfigPath)
	demoFunc := getDemoFunc()

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "Start as server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "conf",
						Aliases:     []string{"c"},
						Value:       "server.yaml",
						EnvVars:     []string{"WDS_CONF"},
						Destination: &configPath,
					},
					&cli.StringFlag{
						Name:        "sdkconf",
						Aliases:     []string{"s"},
						Value:       "config-network.yaml",
						EnvVars:     []string{"WDS_SDK_CONF"},
						Destination: &sdkConfigPath,
					},
				},
				Action: serveFunc,
			},
			{
				Name:    "demo",
				Aliases: []string{"d"},
				Usage:   "Run the wrap-DEK sharing flow in process with generated keys",
				Action:  demoFunc,
			},
		},
	}

	// Run the cli helper
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func getServeFunc(configPath *string, sdkConfigPath *string) func(c *cli.Context) error {
	serveFunc := func(c *cli.Context) error {
		// Load serve info from `server.yaml`
		serverInfo, err := appinit.LoadServerInfo(*configPath)
		if err != nil {
			return err
		}

		global.ShowTimingLogs = serverInfo.ShowTimingLogs

		// Load the protocol key pairs (issuer, session host, audit)
		if err := appinit.LoadProtocolKeys(serverInfo.Keys); err != nil {
			return err
		}

		// Prepare the auth ledger according to the configured backend
		var authLedger ledger.IAuthLedger
		switch serverInfo.AuthLedgerBackend {
		case "fabric":
			if serverInfo.Fabric == nil || serverInfo.Fabric.User == nil {
				return fmt.Errorf("授权账本后端为 fabric 时须配置 fabric 连接信息")
			}

			// Create a Fabric SDK instance and a channel client
			if err := appinit.SetupSDK(*sdkConfigPath); err != nil {
				return err
			}
			defer global.SDKInstance.Close()

			orgName := serverInfo.Fabric.User.OrgName
			userID := serverInfo.Fabric.User.UserID
			channelID := serverInfo.Fabric.ChannelID
			if err := appinit.InstantiateChannelClient(global.SDKInstance, channelID, orgName, userID); err != nil {
				return err
			}

			authLedger = fabricledger.NewAuthLedgerFabricImpl(&fabricledger.FabricChaincodeCtx{
				ChannelID:     channelID,
				OrgName:       orgName,
				Username:      userID,
				ChaincodeID:   serverInfo.Fabric.ChaincodeID,
				ChannelClient: global.ChannelClientInstances[channelID][orgName][userID],
			})
		case "", "mem":
			authLedger = memledger.NewAuthLedgerMemImpl()
		default:
			return fmt.Errorf("未知的授权账本后端: %v", serverInfo.AuthLedgerBackend)
		}

		// Connect the optional local database mirror
		var localDB *gorm.DB
		if serverInfo.MySQLDSN != "" {
			localDB, err = appinit.SetupLocalDB(serverInfo.MySQLDSN)
			if err != nil {
				return err
			}
		}

		// Connect the optional IPFS node
		var ipfsSh *ipfs.Shell
		if serverInfo.IPFSAPIURL != "" {
			ipfsSh, err = appinit.SetupIPFSShell(serverInfo.IPFSAPIURL)
			if err != nil {
				return err
			}
		}

		// Instantiate the protocol services
		eventManager := eventmgr.NewEventManagerMemImpl()
		identityRegistry := memledger.NewIdentityRegistryMemImpl()
		resourceStore := store.NewResourceStore(localDB, ipfsSh)

		auditSvc := service.NewAuditService(global.AuditPrivateKey, eventManager, localDB)

		wrapTTL := time.Duration(serverInfo.WrapTTLSeconds) * time.Second
		issuanceSvc := service.NewIssuanceService(global.IssuerPrivateKey, identityRegistry, authLedger,
			auditSvc, resourceStore, eventManager, wrapTTL)
		issuanceSvc.RegisterSessionHost(serverInfo.SessionHostID, global.SessionHostPublicKey)

		enforcementSvc := service.NewEnforcementService(serverInfo.SessionHostID, global.SessionHostPrivateKey,
			global.IssuerPublicKey, issuanceSvc, resourceStore, auditSvc)

		// Start the anchor server to flush evidence batches periodically
		anchorInterval := time.Duration(serverInfo.AnchorIntervalSeconds) * time.Second
		anchorServer := background.NewAnchorServer(auditSvc, issuanceSvc, eventManager, anchorInterval)
		if err := anchorServer.Start(); err != nil {
			return err
		}

		// Start the revocation listener on the session host side
		revocationListener := background.NewRevocationListenerServer(enforcementSvc, eventManager)
		if err := revocationListener.Start(); err != nil {
			return err
		}

		// Instantiate controllers
		pingPongController := &controller.PingPongController{}

		resourceController := &controller.ResourceController{
			GroupName:     "/resource",
			ResourceStore: resourceStore,
		}

		identityController := &controller.IdentityController{
			GroupName:        "/identity",
			IdentityRegistry: identityRegistry,
		}

		authorizationController := &controller.AuthorizationController{
			GroupName:   "/authorization",
			AuthLedger:  authLedger,
			IssuanceSvc: issuanceSvc,
		}

		issuanceController := &controller.IssuanceController{
			GroupName:   "/issuance",
			IssuanceSvc: issuanceSvc,
		}

		enforcementController := &controller.EnforcementController{
			GroupName:      "/enforcement",
			EnforcementSvc: enforcementSvc,
		}

		auditController := &controller.AuditController{
			GroupName: "/audit",
			AuditSvc:  auditSvc,
		}

		// Register controller handlers
		router := gin.Default()
		router.Use(controller.CORSMiddleware())
		apiv1Group := router.Group("/api/v1")
		controller.RegisterHandlers(apiv1Group, pingPongController)
		controller.RegisterHandlers(apiv1Group, resourceController)
		controller.RegisterHandlers(apiv1Group, identityController)
		controller.RegisterHandlers(apiv1Group, authorizationController)
		controller.RegisterHandlers(apiv1Group, issuanceController)
		controller.RegisterHandlers(apiv1Group, enforcementController)
		controller.RegisterHandlers(apiv1Group, auditController)

		// Start the HTTP server
		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%v", serverInfo.Port),
			Handler: router,
		}

		chanError := make(chan error)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil {
				chanError <- errors.Wrap(err, "无法启动 HTTP 服务器")
			}
		}()

		// Listen Ctrl+C signals. On receiving a signal stops the app elegantly
		chanQuit := make(chan os.Signal, 1)
		signal.Notify(chanQuit, os.Interrupt)
		select {
		case err := <-chanError:
			return err
		case <-chanQuit:
			log.Infoln("收到 Ctrl+C 信号，正在退出程序...")

			// Stop the HTTP server elegantly
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			log.Infoln("正在停止 HTTP 服务器...")
			if err := httpServer.Shutdown(ctx); err != nil {
				return errors.Wrap(err, "无法正常停止 HTTP 服务器")
			}

			log.Infoln("正在停止撤销监听服务器...")
			if wg, err := revocationListener.Stop(); err != nil {
				return err
			} else {
				defer wg.Wait()
			}

			log.Infoln("正在停止审计锚定服务器...")
			if wg, err := anchorServer.Stop(); err != nil {
				return err
			} else {
				defer wg.Wait()
			}
		}

		return nil
	}

	return serveFunc
}
