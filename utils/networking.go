package utils

import "net"

// FindFreePort 向操作系统申请一个空闲TCP端口。
// 监听端口0由内核分配后立即释放，端口号交给调用方使用；
// 释放与复用之间存在竞争窗口，调用方需要对启动失败做重试。
func FindFreePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := ln.Close(); err != nil {
		return 0, err
	}
	return port, nil
}
