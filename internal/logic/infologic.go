package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"indexfund-api/internal/svc"
	"indexfund-api/internal/types"
)

type InfoLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewInfoLogic(ctx context.Context, svcCtx *svc.ServiceContext) *InfoLogic {
	return &InfoLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *InfoLogic) Info() (*types.InfoResponse, error) {
	info, err := l.svcCtx.Runtime.Info(l.ctx)
	if err != nil {
		return nil, err
	}
	resp := &types.InfoResponse{
		RegistryId:          info.RegistryID,
		Deployed:            info.Deployed,
		RebalanceInterval:   info.RebalanceInterval,
		LastRebalance:       info.LastRebalance,
		AssetCount:          info.AssetCount,
		RegistrationDeposit: l.svcCtx.RegistryConfig.RegistrationDeposit().Dec(),
	}
	if info.Controller != nil {
		resp.Controller = string(*info.Controller)
	}
	return resp, nil
}
