package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"indexfund-api/internal/svc"
	"indexfund-api/internal/types"
)

type DeployLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeployLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeployLogic {
	return &DeployLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *DeployLogic) Deploy(req *types.DeployRequest) (*types.DeployResponse, error) {
	if err := l.svcCtx.Runtime.Deploy(l.ctx, req.RebalanceInterval); err != nil {
		return nil, err
	}
	return &types.DeployResponse{
		RegistryId:        l.svcCtx.Runtime.RegistryID(),
		RebalanceInterval: req.RebalanceInterval,
	}, nil
}
