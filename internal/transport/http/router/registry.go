package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule mounts routes under /api/v1.
type APIModule interface{ MountAPI(*gin.RouterGroup) }

// LegacyModule mounts unversioned routes at the engine root.
type LegacyModule interface{ MountLegacy(gin.IRoutes) }

// Modules implementing prioritizer mount in ascending order; others use 100.
type prioritizer interface{ Priority() int }

func mountAll(r *gin.Engine, api *gin.RouterGroup, mods []any) {
	mods = append([]any(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		if lm, ok := m.(LegacyModule); ok {
			lm.MountLegacy(r)
		}
		if am, ok := m.(APIModule); ok {
			am.MountAPI(api)
		}
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
