/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移执行与各业务服务装配
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/cleanse_pipeline_design.md
 * @stateFlow 应用启动时执行初始化流程：数据库 -> 迁移 -> 服务装配 -> 调度器/看门狗启动
 * @rules 数据库不可用时直接终止进程；Redis与Kafka为可选依赖，缺失时降级为单实例、不发布
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs main.go, api/routes.go
 */

package service

import (
	"fmt"
	"log"
	"os"
	"strings"

	"salescleanse-service/logger"
	"salescleanse-service/service/auth"
	"salescleanse-service/service/cleanup"
	"salescleanse-service/service/database"
	"salescleanse-service/service/distributed_lock"
	"salescleanse-service/service/monitoring"
	"salescleanse-service/service/pipeline"
	"salescleanse-service/service/rate_limiter"
	"salescleanse-service/service/scheduler"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                        *gorm.DB
	GlobalRunService          *RunService
	GlobalAccessKeyService    *auth.AccessKeyService
	GlobalPipelineScheduler   *scheduler.PipelineScheduler
	GlobalStaleRunWatchdog    *monitoring.StaleRunWatchdog
	GlobalRunRetentionService *cleanup.RunRetentionService
	GlobalRunRateLimiter      *rate_limiter.RunRateLimiter
)

func init() {
	logger.InitLogger()

	// .env在数据库连接之前加载，本包init先于main执行
	if err := godotenv.Load(); err != nil {
		log.Println("未找到.env文件，使用环境变量与默认值")
	}

	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "things2024")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	log.Println("所有数据库迁移任务完成")
}

// initServices 初始化服务
func initServices() {
	// Redis为可选依赖，未启用或连接失败时锁与限流均降级
	var lockExec *distributed_lock.LockExecutor
	if getEnvWithDefault("REDIS_ENABLED", "false") == "true" {
		redisLock, err := distributed_lock.NewRedisLock()
		if err != nil {
			log.Printf("Redis分布式锁初始化失败: %v, 以单实例模式运行", err)
		} else {
			lockExec = distributed_lock.NewLockExecutor(redisLock)
			log.Println("Redis分布式锁初始化成功")
		}

		limiter, err := rate_limiter.NewRunRateLimiter()
		if err != nil {
			log.Printf("运行提交限流器初始化失败: %v, 不做提交限流", err)
		} else {
			GlobalRunRateLimiter = limiter
		}
	}

	// Kafka报告发布为可选依赖，未配置Broker时不发布
	publisher := pipeline.NewReportPublisher(pipeline.ReportPublisherConfig{
		Brokers: splitBrokers(os.Getenv("KAFKA_REPORT_BROKERS")),
		Topic:   getEnvWithDefault("KAFKA_REPORT_TOPIC", "salescleanse.quality-reports"),
	})
	if publisher.Enabled() {
		log.Println("质量报告Kafka发布已启用")
	}

	GlobalRunService = NewRunService(DB, lockExec, publisher)
	GlobalAccessKeyService = auth.NewAccessKeyService(DB)

	// 初始化调度器服务
	GlobalPipelineScheduler = scheduler.NewPipelineScheduler(DB, GlobalRunService)
	if err := GlobalPipelineScheduler.Start(); err != nil {
		log.Printf("启动调度器服务失败: %v", err)
	}

	// 启动僵死运行看门狗
	watchdog, err := monitoring.NewStaleRunWatchdog(DB, monitoring.GetPipelineMetrics())
	if err != nil {
		log.Printf("启动僵死运行看门狗失败: %v", err)
	} else {
		GlobalStaleRunWatchdog = watchdog
		GlobalStaleRunWatchdog.Start()
	}

	// 启动运行保留期清理
	GlobalRunRetentionService = cleanup.NewRunRetentionService(DB)
	if err := GlobalRunRetentionService.StartScheduledCleanup(); err != nil {
		log.Printf("启动运行保留期清理失败: %v", err)
	}

	log.Println("服务初始化完成")
}

// splitBrokers 解析逗号分隔的Broker地址列表
func splitBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	var brokers []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			brokers = append(brokers, part)
		}
	}
	return brokers
}
