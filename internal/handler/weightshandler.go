package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"indexfund-api/internal/logic"
	"indexfund-api/internal/svc"
)

func WeightsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewWeightsLogic(r.Context(), svcCtx)
		resp, err := l.Weights()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
