package website

import (
	"net/http"

	"github.com/vanguardtable/vanguard/src/assets"
)

func Health(c *RequestContext) ResponseData {
	type healthData struct {
		Status  string      `json:"status"`
		Db      bool        `json:"db"`
		Storage assets.Mode `json:"storage"`
	}

	dbOk := c.Conn.Ping(c) == nil

	res := ResponseData{StatusCode: http.StatusOK}
	status := "ok"
	if !dbOk {
		res.StatusCode = http.StatusServiceUnavailable
		status = "degraded"
	}

	res.WriteJson(healthData{
		Status:  status,
		Db:      dbOk,
		Storage: c.Storage.Mode(),
	})
	return res
}
