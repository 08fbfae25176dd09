package main

import (
	"encoding/base64"
	"flag"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/solver"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/task"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
	"gopkg.in/yaml.v2"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// 求解服务模式：以该模式启动时本程序只承担求解器进程的角色，
	// 加载编译产物并在指定地址提供求解服务
	solverServe   = flag.Bool("solver.serve", false, "run as the optimizer server process")
	solverProblem = flag.String("solver.problem", "", "compiled optimizer artifact dir (solver.serve mode)")
	solverListen  = flag.String("solver.listen", "127.0.0.1:0", "TCP listening address (solver.serve mode)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "main")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	// 求解服务模式：会话启动器以该模式拉起本程序的子进程
	if *solverServe {
		if *solverProblem == "" {
			log.Panic("solver.problem must be specified in solver.serve mode")
		}
		srv, err := solver.NewServer(*solverProblem, *solverListen)
		if err != nil {
			log.Panicf("failed to start optimizer server: %v", err)
		}
		log.Infof("optimizer serving at %s", srv.Addr())
		if err := srv.Serve(); err != nil {
			log.Panicf("optimizer server stopped: %v", err)
		}
		return
	}

	// 获取配置
	var c config.Config
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	log.Infof("%+v", c)

	rc := config.NewRuntimeConfig(c)
	t := task.NewContext(rc, nil)
	defer t.Close()
	t.Run()
}
