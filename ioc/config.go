package ioc

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envKeys 需要支持环境变量覆盖的配置项, UnmarshalKey 只会看到显式绑定过的 env
var envKeys = []string{
	"telegram.token",
	"exchange.binance.api_key",
	"exchange.binance.api_secret",
	"exchange.bybit.api_key",
	"exchange.bybit.api_secret",
	"redis.password",
}

// InitViper 读取配置文件, OI_TELEGRAM_TOKEN 之类的环境变量优先于文件
func InitViper(file string) {
	viper.SetConfigFile(file)
	viper.SetEnvPrefix("OI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		if err := viper.BindEnv(key); err != nil {
			panic(fmt.Errorf("bind env %s: %w", key, err))
		}
	}
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
}

// unmarshalKey 与 viper.UnmarshalKey 相同, 但叶子节点经过 Get 解析, 绑定的环境变量才能生效
func unmarshalKey(key string, out any) error {
	section, _ := viper.AllSettings()[key].(map[string]any)
	sub := viper.New()
	if err := sub.MergeConfigMap(section); err != nil {
		return err
	}
	return sub.Unmarshal(out)
}
