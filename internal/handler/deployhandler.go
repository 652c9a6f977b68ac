package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"indexfund-api/internal/logic"
	"indexfund-api/internal/svc"
	"indexfund-api/internal/types"
)

func DeployHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DeployRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, badRequest(err))
			return
		}

		l := logic.NewDeployLogic(r.Context(), svcCtx)
		resp, err := l.Deploy(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
