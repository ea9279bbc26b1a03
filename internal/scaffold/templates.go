package scaffold

import (
	"encoding/json"
	"fmt"
)

// DefaultBuildConfiguration is the truffle-config.js written when no override is supplied.
const DefaultBuildConfiguration = `module.exports = {
  networks: {
    development: {
      host: "localhost",
      port: 8545,
      network_id: "*"
    }
  },
  compilers: {
    solc: {
      version: "0.5.3",
    }
  }
};
`

const (
	singleDeployScriptTemplate = `const A = artifacts.require(%s);
module.exports = function(deployer) { deployer.deploy(A) };
`
	linkedDeployScriptTemplate = `var A = artifacts.require(%s);
var B = artifacts.require(%s);
module.exports = function(deployer) {
  deployer.deploy(A);
  deployer.link(A, B);
  deployer.deploy(B);
};
`
)

// RenderDeployScript returns a migration that deploys a single contract.
func RenderDeployScript(contractName string) string {
	return fmt.Sprintf(singleDeployScriptTemplate, quoteScriptString(contractName))
}

// RenderLinkedDeployScript returns a migration that deploys dependencyName,
// links it into dependentName, and then deploys dependentName.
func RenderLinkedDeployScript(dependencyName string, dependentName string) string {
	return fmt.Sprintf(linkedDeployScriptTemplate, quoteScriptString(dependencyName), quoteScriptString(dependentName))
}

func quoteScriptString(value string) string {
	encodedValue, _ := json.Marshal(value)
	return string(encodedValue)
}
