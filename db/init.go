package db

import (
	"context"

	"github.com/SaiNageswarS/go-api-boot/odm"
)

func InitCompanyDB(ctx context.Context, mongo odm.MongoClient, tenant string) error {
	err := odm.EnsureIndexes[CompanyModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	err = odm.EnsureIndexes[QALogModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	err = odm.EnsureIndexes[AgentLogModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	return nil
}
