package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule 业务模块自行挂载路由
type APIModule interface{ MountAPI(gin.IRouter) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂），不实现默认 100
type prioritizer interface{ Priority() int }

// MountAll 按优先级挂载；模块由启动层显式传入，无全局注册表
func MountAll(r gin.IRouter, mods ...APIModule) {
	mods = append([]APIModule(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(r)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
