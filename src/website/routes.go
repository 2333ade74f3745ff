package website

import (
	"net/http"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vanguardtable/vanguard/src/assets"
	"github.com/vanguardtable/vanguard/src/bestiary"
)

func NewWebsiteRoutes(conn *pgxpool.Pool, storage assets.Storage, resolver *bestiary.Resolver) http.Handler {
	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			attachServices(conn, storage, resolver),
			logRequestsMiddleware,
			panicCatcherMiddleware,
			logContextErrorsMiddleware,
			corsMiddleware,
			loadCommonData,
		},
	}

	routes.GET(regexp.MustCompile(`^/healthz$`), Health)

	routes.POST(regexp.MustCompile(`^/api/auth/register$`), Register)
	routes.POST(regexp.MustCompile(`^/api/auth/login$`), securityTimerMiddleware(time.Second, Login))
	routes.POST(regexp.MustCompile(`^/api/auth/logout$`), Logout)

	authed := routes.WithMiddleware(needsAuth)
	authed.GET(regexp.MustCompile(`^/api/auth/me$`), CurrentUserInfo)

	authed.GET(regexp.MustCompile(`^/api/encounters$`), ListEncounters)
	authed.POST(regexp.MustCompile(`^/api/encounters$`), CreateEncounter)
	authed.GET(regexp.MustCompile(`^/api/encounters/(?P<id>[^/]+)$`), GetEncounter)
	authed.PUT(regexp.MustCompile(`^/api/encounters/(?P<id>[^/]+)$`), UpdateEncounter)
	authed.DELETE(regexp.MustCompile(`^/api/encounters/(?P<id>[^/]+)$`), DeleteEncounter)
	authed.POST(regexp.MustCompile(`^/api/encounters/(?P<id>[^/]+)/next_round$`), NextRound)

	authed.GET(regexp.MustCompile(`^/api/encounters/(?P<id>[^/]+)/creatures$`), ListCreatures)
	authed.POST(regexp.MustCompile(`^/api/encounters/(?P<id>[^/]+)/creatures$`), AddCreature)
	authed.PUT(regexp.MustCompile(`^/api/encounters/(?P<id>[^/]+)/creatures/(?P<creatureId>[^/]+)$`), UpdateCreature)
	authed.DELETE(regexp.MustCompile(`^/api/encounters/(?P<id>[^/]+)/creatures/(?P<creatureId>[^/]+)$`), DeleteCreature)

	authed.GET(regexp.MustCompile(`^/api/presets$`), ListPresets)
	authed.POST(regexp.MustCompile(`^/api/presets$`), CreatePreset)
	authed.GET(regexp.MustCompile(`^/api/presets/(?P<id>[^/]+)$`), GetPreset)
	authed.PUT(regexp.MustCompile(`^/api/presets/(?P<id>[^/]+)$`), UpdatePreset)
	authed.DELETE(regexp.MustCompile(`^/api/presets/(?P<id>[^/]+)$`), DeletePreset)
	authed.POST(regexp.MustCompile(`^/api/presets/(?P<id>[^/]+)/creatures$`), AddPresetCreature)
	authed.DELETE(regexp.MustCompile(`^/api/presets/(?P<id>[^/]+)/creatures/(?P<creatureId>[^/]+)$`), DeletePresetCreature)
	authed.POST(regexp.MustCompile(`^/api/presets/(?P<id>[^/]+)/apply$`), ApplyPreset)

	authed.POST(regexp.MustCompile(`^/api/uploads/images$`), UploadImage)
	authed.DELETE(regexp.MustCompile(`^/api/uploads/images/(?P<filename>[^/]+)$`), DeleteUpload)

	routes.GET(regexp.MustCompile(`^/api/creature_images$`), ListCreatureImages)
	routes.GET(regexp.MustCompile(`^/api/creature_images/resolve$`), ResolveCreatureImage)
	routes.GET(regexp.MustCompile(`^/api/creature_images/search$`), SearchCreatureImages)
	authed.POST(regexp.MustCompile(`^/api/creature_images$`), AddCreatureImage)
	authed.POST(regexp.MustCompile(`^/api/creature_images/upload$`), UploadCreatureImage)
	authed.DELETE(regexp.MustCompile(`^/api/creature_images/(?P<name>[^/]+)$`), RemoveCreatureImage)

	// Locally stored content. In cloud mode image references point at the
	// blob store and these routes serve nothing interesting.
	routes.GET(regexp.MustCompile(`^/uploads/(?P<path>.+)$`), ServeUpload)
	routes.GET(regexp.MustCompile(`^/database_images/(?P<filename>[^/]+)$`), ServeDatabaseImage)

	routes.AnyMethod(regexp.MustCompile(`^`), FourOhFour)

	return router
}

func attachServices(conn *pgxpool.Pool, storage assets.Storage, resolver *bestiary.Resolver) Middleware {
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Conn = conn
			c.Storage = storage
			c.Bestiary = resolver
			return h(c)
		}
	}
}
