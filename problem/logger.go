package problem

import "github.com/sirupsen/logrus"

// log 优化问题构建模块的日志记录器
var log = logrus.WithField("module", "problem")
