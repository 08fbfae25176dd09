package solver

import "github.com/sirupsen/logrus"

// log 求解器会话模块的日志记录器
var log = logrus.WithField("module", "solver")
